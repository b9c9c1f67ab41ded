package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"kestrel-trading-bot/internal/httpx"
	"kestrel-trading-bot/internal/interfaces"
	"kestrel-trading-bot/internal/llm"
	"kestrel-trading-bot/internal/store"
	"kestrel-trading-bot/internal/trace"
	"kestrel-trading-bot/internal/types"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Decider asks an OpenAI chat model for a buy/sell/hold verdict on the
// serialized analysis payload.
type Decider struct {
	cfg      *store.Config
	endpoint string
	http     *httpx.Client
}

var _ interfaces.Decider = (*Decider)(nil)

func NewDecider(cfg *store.Config) *Decider {
	return &Decider{
		cfg:      cfg,
		endpoint: defaultEndpoint,
		http: httpx.NewClient(
			httpx.WithTimeout(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second),
			httpx.WithHeader("Authorization", "Bearer "+cfg.Credentials.OpenAIAPIKey),
		),
	}
}

func (d *Decider) Decide(ctx context.Context, payload types.AnalysisPayload, contextData map[string]any) (types.Decision, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	source, err := json.Marshal(payload)
	if err != nil {
		return types.Decision{}, fmt.Errorf("marshal analysis payload: %w", err)
	}

	system := d.cfg.LLM.System
	if system == "" {
		system = llm.DefaultSystemPrompt
	}

	var user strings.Builder
	user.Write(source)
	if len(contextData) > 0 {
		extra, err := json.Marshal(contextData)
		if err == nil {
			user.WriteString("\n\nAdditional context:\n")
			user.Write(extra)
		}
	}

	body := map[string]any{
		"model": d.cfg.LLM.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user.String()},
		},
		"temperature": d.cfg.LLM.Temperature,
		"max_tokens":  d.cfg.LLM.MaxTokens,
	}

	resp, err := d.http.POST(ctx, d.endpoint, body, nil)
	if err != nil {
		return types.Decision{}, fmt.Errorf("openai request: %w", err)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return types.Decision{}, fmt.Errorf("%w: %v", llm.ErrMalformedDecision, err)
	}
	if len(r.Choices) == 0 {
		return types.Decision{}, fmt.Errorf("%w: no choices", llm.ErrMalformedDecision)
	}

	return llm.ParseDecision(r.Choices[0].Message.Content)
}
