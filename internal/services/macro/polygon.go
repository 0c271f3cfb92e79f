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

const polygonBaseURL = "https://api.polygon.io"

// PolygonClient fetches previous-close aggregates for index and crypto
// tickers.
type PolygonClient struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
	l       *applogger.Logger
}

func NewPolygonClient(cfg *config.Config, l *applogger.Logger) *PolygonClient {
	return &PolygonClient{
		baseURL: polygonBaseURL,
		apiKey:  cfg.Macro.PolygonAPIKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		l:       l,
	}
}

type polygonPrevResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Open  float64 `json:"o"`
		Close float64 `json:"c"`
	} `json:"results"`
}

// GetPreviousClose returns yesterday's close as a quote with the
// open-to-close change percentage.
func (p *PolygonClient) GetPreviousClose(ctx context.Context, ticker string) (*models.StockQuote, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("polygon: api key not configured")
	}

	var resp polygonPrevResponse
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v2/aggs/ticker/%s/prev", p.baseURL, ticker),
		QueryParams: map[string][]string{
			"apiKey": {p.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("polygon prev %s: %w", ticker, err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("polygon prev %s: no results", ticker)
	}

	r := resp.Results[0]
	var changePct float64
	if r.Open != 0 {
		changePct = (r.Close - r.Open) / r.Open * 100
	}
	return &models.StockQuote{
		Symbol:    ticker,
		Price:     r.Close,
		ChangePct: changePct,
	}, nil
}

// GetCryptoPreviousClose returns the previous close of X:<symbol>USD.
func (p *PolygonClient) GetCryptoPreviousClose(ctx context.Context, symbol string) (*models.StockQuote, error) {
	return p.GetPreviousClose(ctx, "X:"+symbol+"USD")
}
