package chat

import "sync"

// History is the per-session conversation buffer: an ordered sequence of
// turns keyed by session id, capped at 2x maxTurns entries (a turn pair is
// one user message plus one assistant reply). It is process-lifetime only;
// the durable conversation log is the source of truth and sessions are
// re-seeded from it after a restart.
type History struct {
	mu       sync.Mutex
	sessions map[string][]Turn
	maxTurns int
}

func NewHistory(maxTurns int) *History {
	if maxTurns < 1 {
		maxTurns = 10
	}
	return &History{
		sessions: make(map[string][]Turn),
		maxTurns: maxTurns,
	}
}

func (h *History) cap() int { return h.maxTurns * 2 }

// Append adds turns to the end of the session's sequence, dropping from
// the front once the cap is exceeded.
func (h *History) Append(sessionID string, turns ...Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	seq := append(h.sessions[sessionID], turns...)
	if over := len(seq) - h.cap(); over > 0 {
		seq = append(seq[:0:0], seq[over:]...)
	}
	h.sessions[sessionID] = seq
}

// Get returns up to limit of the session's most recent turns in
// chronological order. Unknown sessions yield an empty slice.
func (h *History) Get(sessionID string, limit int) []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	seq := h.sessions[sessionID]
	if limit > 0 && len(seq) > limit {
		seq = seq[len(seq)-limit:]
	}
	out := make([]Turn, len(seq))
	copy(out, seq)
	return out
}

// Seed installs turns for a session only if the buffer has none, so a
// read-through load cannot clobber turns appended concurrently.
func (h *History) Seed(sessionID string, turns []Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.sessions[sessionID]) > 0 {
		return
	}
	if over := len(turns) - h.cap(); over > 0 {
		turns = turns[over:]
	}
	seq := make([]Turn, len(turns))
	copy(seq, turns)
	h.sessions[sessionID] = seq
}

// Forget drops a session's buffered turns (user-data erasure).
func (h *History) Forget(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, sessionID)
}
