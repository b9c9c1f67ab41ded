package llmobs

import (
	"context"

	"kestrel-trading-bot/internal/interfaces"
	"kestrel-trading-bot/internal/logger"
	"kestrel-trading-bot/internal/trace"
	"kestrel-trading-bot/internal/types"
)

// observableDecider wraps a Decider with observability (logging & tracing)
type observableDecider struct {
	decider interfaces.Decider
}

var _ interfaces.Decider = (*observableDecider)(nil)

// Wrap wraps a decider with observability middleware
func Wrap(decider interfaces.Decider) interfaces.Decider {
	return &observableDecider{decider: decider}
}

func (od *observableDecider) Decide(ctx context.Context, payload types.AnalysisPayload, contextData map[string]any) (types.Decision, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Decide")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting trading decision",
		"current_price", payload.InvestmentStatus.CurrentPrice,
		"daily_bars", len(payload.CandleData),
		"hourly_bars", len(payload.HourCandleData),
	)

	decision, err := od.decider.Decide(ctx, payload, contextData)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get trading decision", err)
		return types.Decision{}, err
	}

	logger.InfoSkip(ctx, 1, "Trading decision received",
		"decision", decision.Decision,
		"reason", decision.Reason,
	)
	return decision, nil
}
