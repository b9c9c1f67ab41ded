package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"kestrel-trading-bot/internal/analysis"
	"kestrel-trading-bot/internal/exchange/exchangeobs"
	"kestrel-trading-bot/internal/exchange/upbit"
	"kestrel-trading-bot/internal/executor"
	"kestrel-trading-bot/internal/interfaces"
	"kestrel-trading-bot/internal/llm/llmobs"
	"kestrel-trading-bot/internal/llm/noop"
	"kestrel-trading-bot/internal/llm/openai"
	"kestrel-trading-bot/internal/logger"
	"kestrel-trading-bot/internal/news"
	"kestrel-trading-bot/internal/server"
	"kestrel-trading-bot/internal/store"
	"kestrel-trading-bot/internal/trace"
	"kestrel-trading-bot/internal/tradelog"

	"github.com/joho/godotenv"
)

// initializeSystem loads env vars and initializes logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old tradelog files if retention is configured.
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeExchange creates the Upbit client with observability wrapping.
func initializeExchange(ctx context.Context, cfg *store.Config) interfaces.Exchange {
	ex := upbit.New(upbit.Params{
		Mode:          cfg.Mode,
		AccessKey:     cfg.Credentials.UpbitAccessKey,
		SecretKey:     cfg.Credentials.UpbitSecretKey,
		BaseURL:       cfg.Exchange.BaseURL,
		Timeout:       time.Duration(cfg.Exchange.TimeoutSeconds) * time.Second,
		Retry:         time.Duration(cfg.Exchange.RetrySeconds) * time.Second,
		RatePerSecond: cfg.Exchange.RatePerSecond,
	})

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}

	return exchangeobs.Wrap(ex)
}

// initializeDecider creates the LLM decider with observability wrapping.
func initializeDecider(ctx context.Context, cfg *store.Config) interfaces.Decider {
	var decider interfaces.Decider

	switch cfg.LLM.Provider {
	case "OPENAI":
		decider = openai.NewDecider(cfg)
	default:
		decider = noop.NewDecider()
		logger.Warn(ctx, "No LLM provider configured - using Noop decider (always hold)")
	}

	return llmobs.Wrap(decider)
}

// initializeServer assembles the aggregator, executor and HTTP facade.
func initializeServer(cfg *store.Config, exchange interfaces.Exchange, decider interfaces.Decider) *server.Server {
	aggregator := analysis.New(exchange, cfg.Market, cfg.Candles.DailyCount, cfg.Candles.HourlyCount)
	exec := executor.New(exchange, cfg.Market, cfg.Order.MinNotionalKRW, cfg.Order.BuyFeeFactor)

	var headliner server.Headliner
	if cfg.News.Enabled {
		headliner = news.NewService(cfg.News.MaxHeadlines, time.Duration(cfg.News.TimeoutSeconds)*time.Second)
	}

	return server.New(cfg, aggregator, decider, exec, headliner)
}
