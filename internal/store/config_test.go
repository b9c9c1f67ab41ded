package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "mode: DRY_RUN\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Market != "KRW-BTC" {
		t.Errorf("Expected default market, got %s", cfg.Market)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("Expected default addr, got %s", cfg.Server.Addr)
	}
	if cfg.Candles.DailyCount != 30 || cfg.Candles.HourlyCount != 24 {
		t.Errorf("Expected default candle counts 30/24, got %d/%d", cfg.Candles.DailyCount, cfg.Candles.HourlyCount)
	}
	if cfg.Order.MinNotionalKRW != 5000 {
		t.Errorf("Expected default min notional 5000, got %f", cfg.Order.MinNotionalKRW)
	}
	if cfg.Order.BuyFeeFactor != 0.9995 {
		t.Errorf("Expected default fee factor 0.9995, got %f", cfg.Order.BuyFeeFactor)
	}
	if cfg.LLM.Provider != "NOOP" {
		t.Errorf("Expected NOOP provider by default, got %s", cfg.LLM.Provider)
	}
}

func TestLoadConfigInvalidMode(t *testing.T) {
	path := writeConfig(t, "mode: YOLO\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "invalid mode") {
		t.Errorf("Expected mode error, got %v", err)
	}
}

func TestLoadConfigLiveRequiresKeys(t *testing.T) {
	t.Setenv("UPBIT_ACCESS_KEY", "")
	t.Setenv("UPBIT_SECRET_KEY", "")
	path := writeConfig(t, "mode: LIVE\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected error for LIVE mode without credentials")
	}
}

func TestLoadConfigOpenAIRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := writeConfig(t, "mode: DRY_RUN\nllm:\n  provider: OPENAI\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected error for OPENAI provider without API key")
	}
}

func TestLoadConfigReadsCredentialsFromEnv(t *testing.T) {
	t.Setenv("UPBIT_ACCESS_KEY", "ak")
	t.Setenv("UPBIT_SECRET_KEY", "sk")
	t.Setenv("OPENAI_API_KEY", "ok")
	path := writeConfig(t, "mode: LIVE\nllm:\n  provider: OPENAI\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Credentials.UpbitAccessKey != "ak" || cfg.Credentials.UpbitSecretKey != "sk" {
		t.Error("Expected Upbit credentials read from environment")
	}
	if cfg.Credentials.OpenAIAPIKey != "ok" {
		t.Error("Expected OpenAI key read from environment")
	}
}

func TestValidateFeeFactorRange(t *testing.T) {
	path := writeConfig(t, "mode: DRY_RUN\norder:\n  buy_fee_factor: 1.5\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected error for fee factor above 1")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
}
