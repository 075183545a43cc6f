package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/model"
)

const (
	remoteTimeout = 30 * time.Second
	maxReplySize  = 1 << 20
)

// RemoteIntent calls an OpenAI-compatible chat-completions endpoint to
// classify messages. Any failure makes the engine fall back to the pattern
// matcher, so errors here are advisory.
type RemoteIntent struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewRemoteIntent builds a client. Returns nil when apiKey is empty, which
// disables remote detection entirely.
func NewRemoteIntent(baseURL, apiKey, model string) *RemoteIntent {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if model == "" {
		model = "mistralai/mixtral-8x7b-instruct"
	}
	return &RemoteIntent{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{},
	}
}

const intentInstructions = `You are a financial assistant. Analyze the user's message and return a JSON object with:
- intent: one of ["add_transaction", "update_transaction", "delete_transaction", "get_summary", "get_monthly_total_income", "get_monthly_total_expense", "forecast_expense", "forecast_income", "check_budget", "predict_budget", "budget_risk", "spending_insights", "chat"]
- transaction: true/false (true only when BOTH amount and category are clearly specified)
- For add_transaction include: amount, category (must match an available category exactly), description, type ("income" or "expense")
- For update_transaction include: old_amount, new_amount, category (optional)
- For delete_transaction include: amount (optional), category (optional)
- For chat or advice include a "message" field with your reply
Return only the JSON object.`

// Detect asks the remote model to classify input.
func (r *RemoteIntent) Detect(ctx context.Context, input string, categories []model.Category) (*Detection, error) {
	var cats strings.Builder
	for _, c := range categories {
		fmt.Fprintf(&cats, "%s (%s)\n", c.Name, c.Type)
	}

	prompt := fmt.Sprintf("%s\n\nAvailable Categories:\n%s\nUser message: %q",
		intentInstructions, cats.String(), input)

	payload, err := json.Marshal(map[string]any{
		"model":       r.model,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"temperature": 0.5,
	})
	if err != nil {
		return nil, fmt.Errorf("chatbot: encoding intent request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("chatbot: creating intent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chatbot: intent request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chatbot: intent endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, fmt.Errorf("chatbot: reading intent response: %w", err)
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("chatbot: parsing completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("chatbot: completion has no choices")
	}

	return parseIntentJSON(completion.Choices[0].Message.Content)
}

// parseIntentJSON decodes the model's answer, tolerating markdown code
// fences around the JSON object.
func parseIntentJSON(content string) (*Detection, error) {
	content = stripCodeFence(content)

	var wire struct {
		Intent      string   `json:"intent"`
		Transaction bool     `json:"transaction"`
		Amount      *float64 `json:"amount"`
		OldAmount   *float64 `json:"old_amount"`
		NewAmount   *float64 `json:"new_amount"`
		Category    string   `json:"category"`
		Description string   `json:"description"`
		Type        string   `json:"type"`
		Message     string   `json:"message"`
	}
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return nil, fmt.Errorf("chatbot: parsing intent JSON: %w", err)
	}
	if wire.Intent == "" {
		return nil, errors.New("chatbot: intent JSON missing intent field")
	}

	d := &Detection{
		Intent:      wire.Intent,
		Transaction: wire.Transaction,
		Category:    wire.Category,
		Description: wire.Description,
		Type:        model.TxType(wire.Type),
		Message:     wire.Message,
	}
	d.Amount = toDecimal(wire.Amount)
	d.OldAmount = toDecimal(wire.OldAmount)
	d.NewAmount = toDecimal(wire.NewAmount)
	return d, nil
}

func toDecimal(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
	} else {
		return s
	}
	if j := strings.Index(s, "```"); j >= 0 {
		s = s[:j]
	}
	return strings.TrimSpace(s)
}
