package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"kestrel-trading-bot/internal/logger"
)

// Source defines a crypto news source configuration.
type Source struct {
	Name             string
	BaseURL          string
	SearchPath       string // e.g. "/search?q={symbol}"
	HeadlineSelector string
}

// Service scrapes recent headlines for a market's base asset. It is
// best-effort context for the decision prompt: failures are logged and
// an empty slice is returned, never an error.
type Service struct {
	sources      []Source
	maxHeadlines int
	timeout      time.Duration
}

func NewService(maxHeadlines int, timeout time.Duration) *Service {
	return &Service{
		sources:      defaultSources(),
		maxHeadlines: maxHeadlines,
		timeout:      timeout,
	}
}

func defaultSources() []Source {
	return []Source{
		{
			Name:             "Cointelegraph",
			BaseURL:          "https://cointelegraph.com",
			SearchPath:       "/tags/{symbol}",
			HeadlineSelector: "article a span",
		},
		{
			Name:             "CoinDesk",
			BaseURL:          "https://www.coindesk.com",
			SearchPath:       "/search?s={symbol}",
			HeadlineSelector: "article h2, article h3",
		},
	}
}

// Headlines returns up to maxHeadlines recent titles for the market's
// base asset, e.g. "bitcoin" for KRW-BTC.
func (s *Service) Headlines(ctx context.Context, market string) []string {
	symbol := assetName(market)
	headlines := []string{}

	for _, source := range s.sources {
		if len(headlines) >= s.maxHeadlines {
			break
		}
		titles, err := s.scrape(source, symbol, s.maxHeadlines-len(headlines))
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape news source", err, "source", source.Name, "symbol", symbol)
			continue
		}
		headlines = append(headlines, titles...)
	}

	logger.Debug(ctx, "News headlines collected", "symbol", symbol, "count", len(headlines))
	return headlines
}

func (s *Service) scrape(source Source, symbol string, limit int) ([]string, error) {
	titles := []string{}
	seen := map[string]bool{}

	c := colly.NewCollector(
		colly.AllowedDomains(hostname(source.BaseURL)),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	c.OnHTML(source.HeadlineSelector, func(e *colly.HTMLElement) {
		if len(titles) >= limit {
			return
		}
		title := strings.TrimSpace(e.Text)
		if title == "" || len(title) < 20 || seen[title] {
			return
		}
		seen[title] = true
		titles = append(titles, title)
	})

	searchURL := source.BaseURL + strings.ReplaceAll(source.SearchPath, "{symbol}", strings.ToLower(symbol))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}
	c.Wait()

	return titles, nil
}

func hostname(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// assetName maps a market code to the search term used by news sites.
func assetName(market string) string {
	_, coin, found := strings.Cut(market, "-")
	if !found {
		coin = market
	}
	if name, ok := assetNames[coin]; ok {
		return name
	}
	return strings.ToLower(coin)
}

var assetNames = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"XRP":  "xrp",
	"SOL":  "solana",
	"DOGE": "dogecoin",
}
