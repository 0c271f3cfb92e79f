package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

const defaultFearGreedURL = "https://api.alternative.me/fng/"

// FearGreedClient fetches the crypto Fear & Greed index.
type FearGreedClient struct {
	baseURL string
	client  *xhttp.Client
	l       *applogger.Logger
}

func NewFearGreedClient(cfg *config.Config, l *applogger.Logger) *FearGreedClient {
	baseURL := cfg.MarketData.FearGreedURL
	if baseURL == "" {
		baseURL = defaultFearGreedURL
	}
	return &FearGreedClient{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		l:       l,
	}
}

type fngResponse struct {
	Data []struct {
		Value          string `json:"value"`
		Classification string `json:"value_classification"`
		Timestamp      string `json:"timestamp"`
	} `json:"data"`
}

// GetCurrent returns the latest index observation.
func (f *FearGreedClient) GetCurrent(ctx context.Context) (*models.FearGreed, error) {
	history, err := f.GetHistorical(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("fear greed: empty response")
	}
	return &history[0], nil
}

// GetHistorical returns up to limit observations, newest first.
func (f *FearGreedClient) GetHistorical(ctx context.Context, limit int) ([]models.FearGreed, error) {
	if limit <= 0 {
		limit = 30
	}

	var resp fngResponse
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         f.baseURL,
		QueryParams: map[string][]string{"limit": {strconv.Itoa(limit)}},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fear greed: %w", err)
	}

	out := make([]models.FearGreed, 0, len(resp.Data))
	for _, d := range resp.Data {
		value, err := strconv.Atoi(d.Value)
		if err != nil {
			f.l.Warn("skipping malformed fear greed entry", applogger.Error(err))
			continue
		}
		ts, _ := strconv.ParseInt(d.Timestamp, 10, 64)
		out = append(out, models.FearGreed{
			Value:          value,
			Classification: d.Classification,
			Timestamp:      time.Unix(ts, 0).UTC(),
		})
	}
	return out, nil
}
