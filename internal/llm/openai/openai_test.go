package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kestrel-trading-bot/internal/llm"
	"kestrel-trading-bot/internal/store"
	"kestrel-trading-bot/internal/types"
)

func testConfig() *store.Config {
	cfg := &store.Config{}
	cfg.LLM.Model = "gpt-4o"
	cfg.LLM.MaxTokens = 512
	cfg.LLM.TimeoutSeconds = 5
	cfg.Credentials.OpenAIAPIKey = "test-key"
	return cfg
}

func newTestDecider(t *testing.T, handler http.Handler) *Decider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	d := NewDecider(testConfig())
	d.endpoint = srv.URL
	return d
}

func TestDecideParsesModelOutput(t *testing.T) {
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	d := newTestDecider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected bearer auth, got %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("Expected JSON request body, got %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"decision\": \"buy\", \"reason\": \"rsi oversold\"}"}}]}`))
	}))

	decision, err := d.Decide(context.Background(), types.AnalysisPayload{}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if decision.Decision != types.DecisionBuy {
		t.Errorf("Expected buy, got %s", decision.Decision)
	}
	if decision.Reason != "rsi oversold" {
		t.Errorf("Expected reason carried through, got %q", decision.Reason)
	}

	if gotReq.Model != "gpt-4o" {
		t.Errorf("Expected configured model, got %s", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Fatalf("Expected system+user messages, got %+v", gotReq.Messages)
	}
	if !strings.Contains(gotReq.Messages[0].Content, "buy, sell, or hold") {
		t.Error("Expected default system prompt when none configured")
	}
}

func TestDecideIncludesContextData(t *testing.T) {
	var userContent string
	d := newTestDecider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		userContent = req.Messages[1].Content
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"decision\": \"hold\", \"reason\": \"news noise\"}"}}]}`))
	}))

	contextData := map[string]any{"news_headlines": []string{"bitcoin rallies"}}
	if _, err := d.Decide(context.Background(), types.AnalysisPayload{}, contextData); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(userContent, "Additional context") {
		t.Error("Expected context data section in user message")
	}
	if !strings.Contains(userContent, "bitcoin rallies") {
		t.Error("Expected headlines included in user message")
	}
}

func TestDecideMalformedContent(t *testing.T) {
	d := newTestDecider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"I cannot decide right now."}}]}`))
	}))

	_, err := d.Decide(context.Background(), types.AnalysisPayload{}, nil)
	if !errors.Is(err, llm.ErrMalformedDecision) {
		t.Errorf("Expected ErrMalformedDecision, got %v", err)
	}
}

func TestDecideNoChoices(t *testing.T) {
	d := newTestDecider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))

	_, err := d.Decide(context.Background(), types.AnalysisPayload{}, nil)
	if !errors.Is(err, llm.ErrMalformedDecision) {
		t.Errorf("Expected ErrMalformedDecision for empty choices, got %v", err)
	}
}
