package interfaces

import (
	"context"

	"kestrel-trading-bot/internal/types"
)

// Decider turns a full analysis payload into a buy/sell/hold decision.
// contextData carries optional extras (e.g. news headlines) for the prompt.
type Decider interface {
	Decide(ctx context.Context, payload types.AnalysisPayload, contextData map[string]any) (types.Decision, error)
}
