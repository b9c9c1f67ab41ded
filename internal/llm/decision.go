package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"kestrel-trading-bot/internal/types"
)

// ErrMalformedDecision marks model output that cannot be parsed as the
// expected {decision, reason} structure. Distinct from transport failures
// (httpx.ErrUnavailable): the service answered, the answer is unusable.
var ErrMalformedDecision = errors.New("malformed decision response")

// DefaultSystemPrompt is the fixed instruction given to the model.
const DefaultSystemPrompt = `You are an expert in cryptocurrency coin investing. Tell me whether to buy, sell, or hold at the moment based on the difference data provided.

Response Example:
{"decision": "buy", "reason": "some technical reason"}
{"decision": "sell", "reason": "some technical reason"}
{"decision": "hold", "reason": "some technical reason"}`

// ParseDecision extracts a {decision, reason} object from model output.
// Models wrap JSON in prose or code fences often enough that the first
// balanced-looking object in the text is tried before giving up.
func ParseDecision(text string) (types.Decision, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return types.Decision{}, fmt.Errorf("%w: empty response", ErrMalformedDecision)
	}

	candidate := t
	if !strings.HasPrefix(t, "{") {
		start := strings.Index(t, "{")
		end := strings.LastIndex(t, "}")
		if start < 0 || end <= start {
			return types.Decision{}, fmt.Errorf("%w: no JSON object in %q", ErrMalformedDecision, truncate(t, 120))
		}
		candidate = t[start : end+1]
	}

	var d types.Decision
	if err := json.Unmarshal([]byte(candidate), &d); err != nil {
		return types.Decision{}, fmt.Errorf("%w: %v", ErrMalformedDecision, err)
	}

	d.Decision = strings.ToLower(strings.TrimSpace(d.Decision))
	switch d.Decision {
	case types.DecisionBuy, types.DecisionSell, types.DecisionHold:
	default:
		return types.Decision{}, fmt.Errorf("%w: unknown decision %q", ErrMalformedDecision, d.Decision)
	}
	return d, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
