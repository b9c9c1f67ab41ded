package noop

import (
	"context"

	"kestrel-trading-bot/internal/logger"
	"kestrel-trading-bot/internal/types"
)

// Decider is a fallback used when no LLM provider is configured
type Decider struct{}

// NewDecider returns an instance that always decides hold
func NewDecider() *Decider {
	return &Decider{}
}

// Decide implements the Decider interface. It always returns hold.
func (d *Decider) Decide(ctx context.Context, payload types.AnalysisPayload, contextData map[string]any) (types.Decision, error) {
	logger.Debug(ctx, "Noop decider called - always returns hold")
	return types.Decision{
		Decision: types.DecisionHold,
		Reason:   "noop_decider_fallback",
	}, nil
}
