package macro

import (
	"context"
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubClient fetches financial news headlines by category.
type FinnhubClient struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
	l       *applogger.Logger
}

func NewFinnhubClient(cfg *config.Config, l *applogger.Logger) *FinnhubClient {
	return &FinnhubClient{
		baseURL: finnhubBaseURL,
		apiKey:  cfg.Macro.FinnhubAPIKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		l:      l,
	}
}

type fhNewsItem struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Datetime int64  `json:"datetime"`
	Category string `json:"category"`
	URL      string `json:"url"`
}

// GetNews returns headlines for the category (general, crypto, forex,
// merger).
func (f *FinnhubClient) GetNews(ctx context.Context, category string, limit int) ([]models.CryptoNews, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("finnhub: api key not configured")
	}
	if category == "" {
		category = "general"
	}

	var items []fhNewsItem
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    f.baseURL + "/news",
		QueryParams: map[string][]string{
			"category": {category},
			"token":    {f.apiKey},
		},
	}, &items)
	if err != nil {
		return nil, fmt.Errorf("finnhub news: %w", err)
	}

	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}
	news := make([]models.CryptoNews, 0, limit)
	for _, item := range items[:limit] {
		news = append(news, models.CryptoNews{
			Title:       item.Headline,
			Source:      item.Source,
			PublishedAt: time.Unix(item.Datetime, 0).UTC(),
			Categories:  item.Category,
			URL:         item.URL,
		})
	}
	f.l.Debug("fetched financial news",
		applogger.String("category", category),
		applogger.Int("count", len(news)))
	return news, nil
}

// GetCryptoNews returns crypto-category headlines.
func (f *FinnhubClient) GetCryptoNews(ctx context.Context, limit int) ([]models.CryptoNews, error) {
	return f.GetNews(ctx, "crypto", limit)
}
