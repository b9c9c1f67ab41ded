package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode   string `yaml:"mode"`
	Market string `yaml:"market"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Candles struct {
		DailyCount  int `yaml:"daily_count"`
		HourlyCount int `yaml:"hourly_count"`
	} `yaml:"candles"`

	Order struct {
		MinNotionalKRW float64 `yaml:"min_notional_krw"`
		BuyFeeFactor   float64 `yaml:"buy_fee_factor"`
	} `yaml:"order"`

	Exchange struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		RatePerSecond  int    `yaml:"rate_per_second"`
		RetrySeconds   int    `yaml:"retry_seconds"`
	} `yaml:"exchange"`

	LLM struct {
		Provider       string  `yaml:"provider"`
		Model          string  `yaml:"model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float32 `yaml:"temperature"`
		System         string  `yaml:"system"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"llm"`

	News struct {
		Enabled        bool `yaml:"enabled"`
		MaxHeadlines   int  `yaml:"max_headlines"`
		TimeoutSeconds int  `yaml:"timeout_seconds"`
	} `yaml:"news"`

	// Credentials are read from the environment once at load time, never
	// ad hoc afterwards.
	Credentials Credentials `yaml:"-"`
}

type Credentials struct {
	UpbitAccessKey string
	UpbitSecretKey string
	OpenAIAPIKey   string
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Market == "" {
		return errors.New("market cannot be empty")
	}
	if c.Order.MinNotionalKRW <= 0 {
		return fmt.Errorf("order.min_notional_krw must be positive, got %.2f", c.Order.MinNotionalKRW)
	}
	if c.Order.BuyFeeFactor <= 0 || c.Order.BuyFeeFactor > 1 {
		return fmt.Errorf("order.buy_fee_factor must be in (0,1], got %.4f", c.Order.BuyFeeFactor)
	}
	if c.LLM.Provider != "OPENAI" && c.LLM.Provider != "NOOP" {
		return fmt.Errorf("llm.provider must be 'OPENAI' or 'NOOP', got '%s'", c.LLM.Provider)
	}
	if c.LLM.Provider == "OPENAI" && c.Credentials.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY missing")
	}
	if c.Mode == "LIVE" && (c.Credentials.UpbitAccessKey == "" || c.Credentials.UpbitSecretKey == "") {
		return errors.New("UPBIT_ACCESS_KEY/UPBIT_SECRET_KEY required in LIVE mode")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.Market == "" {
		c.Market = "KRW-BTC"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Candles.DailyCount == 0 {
		c.Candles.DailyCount = 30
	}
	if c.Candles.HourlyCount == 0 {
		c.Candles.HourlyCount = 24
	}
	if c.Order.MinNotionalKRW == 0 {
		c.Order.MinNotionalKRW = 5000
	}
	if c.Order.BuyFeeFactor == 0 {
		c.Order.BuyFeeFactor = 0.9995
	}
	if c.Exchange.BaseURL == "" {
		c.Exchange.BaseURL = "https://api.upbit.com"
	}
	if c.Exchange.TimeoutSeconds == 0 {
		c.Exchange.TimeoutSeconds = 10
	}
	if c.Exchange.RatePerSecond == 0 {
		c.Exchange.RatePerSecond = 5
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NOOP"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 512
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 60
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = 10
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 20
	}

	c.Credentials = Credentials{
		UpbitAccessKey: os.Getenv("UPBIT_ACCESS_KEY"),
		UpbitSecretKey: os.Getenv("UPBIT_SECRET_KEY"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
