package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

const (
	defaultCryptoCompareURL = "https://min-api.cryptocompare.com/data/v2"
	defaultNewsLimit        = 30
)

// CryptoCompareClient fetches crypto news headlines for the context block.
type CryptoCompareClient struct {
	baseURL string
	apiKey  string
	limit   int
	client  *xhttp.Client
	l       *applogger.Logger
}

func NewCryptoCompareClient(cfg *config.Config, l *applogger.Logger) *CryptoCompareClient {
	baseURL := cfg.MarketData.CryptoCompareURL
	if baseURL == "" {
		baseURL = defaultCryptoCompareURL
	}
	limit := cfg.MarketData.NewsLimit
	if limit <= 0 {
		limit = defaultNewsLimit
	}
	return &CryptoCompareClient{
		baseURL: baseURL,
		apiKey:  cfg.MarketData.CryptoCompareKey,
		limit:   limit,
		client:  xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		l:       l,
	}
}

type ccNewsResponse struct {
	Data []struct {
		Title       string `json:"title"`
		Source      string `json:"source"`
		PublishedOn int64  `json:"published_on"`
		Categories  string `json:"categories"`
		URL         string `json:"url"`
	} `json:"Data"`
}

// GetNews returns the latest headlines for the given categories
// (e.g. BTC, Regulation, Trading).
func (c *CryptoCompareClient) GetNews(ctx context.Context, categories []string) ([]models.CryptoNews, error) {
	params := map[string][]string{"lang": {"EN"}}
	if len(categories) > 0 {
		params["categories"] = []string{strings.Join(categories, ",")}
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Apikey " + c.apiKey
	}

	var resp ccNewsResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/news/",
		QueryParams: params,
		Headers:     headers,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("cryptocompare news: %w", err)
	}

	news := make([]models.CryptoNews, 0, c.limit)
	for _, item := range resp.Data {
		if len(news) >= c.limit {
			break
		}
		news = append(news, models.CryptoNews{
			Title:       item.Title,
			Source:      item.Source,
			PublishedAt: time.Unix(item.PublishedOn, 0).UTC(),
			Categories:  item.Categories,
			URL:         item.URL,
		})
	}
	c.l.Debug("fetched crypto news", applogger.Int("count", len(news)))
	return news, nil
}

// GetBTCNews returns bitcoin-tagged headlines.
func (c *CryptoCompareClient) GetBTCNews(ctx context.Context) ([]models.CryptoNews, error) {
	return c.GetNews(ctx, []string{"BTC"})
}
