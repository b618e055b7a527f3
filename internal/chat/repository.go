package chat

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/virgil-assistant/virgil/internal/llm"
)

type Repository interface {
	SaveTurn(ctx context.Context, userID, message, response string) error
	ListByUser(ctx context.Context, userID string) ([]Conversation, error)
	RecentTurns(ctx context.Context, userID string, maxPairs int) ([]Turn, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) SaveTurn(ctx context.Context, userID, message, response string) error {
	query := `
		INSERT INTO conversations (user_id, message, response)
		VALUES ($1, $2, $3)`

	if _, err := r.pool.Exec(ctx, query, userID, message, response); err != nil {
		return fmt.Errorf("inserting conversation turn: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID string) ([]Conversation, error) {
	query := `
		SELECT id, user_id, message, response, created_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Message, &c.Response, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecentTurns loads the newest maxPairs exchanges and flattens them into
// chronological user/assistant turns, for re-seeding the history buffer.
func (r *postgresRepository) RecentTurns(ctx context.Context, userID string, maxPairs int) ([]Turn, error) {
	query := `
		SELECT message, response
		FROM conversations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, maxPairs)
	if err != nil {
		return nil, fmt.Errorf("loading recent turns: %w", err)
	}
	defer rows.Close()

	var pairs [][2]string
	for rows.Next() {
		var message, response string
		if err := rows.Scan(&message, &response); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		pairs = append(pairs, [2]string{message, response})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows arrive newest-first; flatten oldest-first.
	turns := make([]Turn, 0, len(pairs)*2)
	for i := len(pairs) - 1; i >= 0; i-- {
		turns = append(turns,
			Turn{Role: llm.RoleUser, Content: pairs[i][0]},
			Turn{Role: llm.RoleAssistant, Content: pairs[i][1]},
		)
	}
	return turns, nil
}

func (r *postgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM conversations WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("deleting conversations: %w", err)
	}
	return nil
}
