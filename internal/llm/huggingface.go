package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HuggingFace calls the hosted Inference API for instruction-tuned models
// (Mixtral-style [INST] prompt format).
type HuggingFace struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHuggingFace(url, apiKey string, timeout time.Duration) *HuggingFace {
	return &HuggingFace{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (h *HuggingFace) Name() string { return "huggingface" }

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
	DoSample     bool    `json:"do_sample"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func (h *HuggingFace) Complete(ctx context.Context, req Request) (string, error) {
	prompt := formatInstructPrompt(req)

	body, err := json.Marshal(hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens: req.MaxTokens,
			Temperature:  0.7,
			TopP:         0.95,
			DoSample:     true,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling inference api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference api returned status %d", resp.StatusCode)
	}

	var generations []hfGeneration
	if err := json.NewDecoder(resp.Body).Decode(&generations); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(generations) == 0 {
		return "", fmt.Errorf("empty generation list")
	}

	// The API echoes the prompt ahead of the completion.
	text := strings.TrimSpace(strings.TrimPrefix(generations[0].GeneratedText, prompt))
	if text == "" {
		return "", fmt.Errorf("empty completion")
	}
	return text, nil
}

// formatInstructPrompt renders the history and current message in the
// [INST] wrapping Mixtral-family models expect, with the system prompt
// folded into the first instruction block.
func formatInstructPrompt(req Request) string {
	var b strings.Builder
	wroteSystem := false

	writeInst := func(content string) {
		b.WriteString("<s>[INST] ")
		if !wroteSystem && req.SystemPrompt != "" {
			b.WriteString(req.SystemPrompt)
			b.WriteString("\n\n")
			wroteSystem = true
		}
		b.WriteString(content)
		b.WriteString(" [/INST]")
	}

	for _, turn := range req.History {
		switch turn.Role {
		case RoleUser:
			writeInst(turn.Content)
		case RoleAssistant:
			b.WriteString(" ")
			b.WriteString(turn.Content)
			b.WriteString(" </s>")
		}
	}
	writeInst(req.Message)
	return b.String()
}
