// Package macro holds the macroeconomic context clients: FRED series,
// equity quotes, index previous closes and financial news.
package macro

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

const fredBaseURL = "https://api.stlouisfed.org/fred"

// fredSeries lists the tracked series with display names and units.
var fredSeries = []struct {
	ID   string
	Name string
	Unit string
}{
	{"DFF", "Federal Funds Rate", "%"},
	{"T10Y2Y", "10Y-2Y Treasury Spread", "%"},
	{"UNRATE", "Unemployment Rate", "%"},
	{"CPIAUCSL", "CPI (All Urban Consumers)", "index"},
}

// FREDClient fetches US economic indicator series.
type FREDClient struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
	l       *applogger.Logger
}

func NewFREDClient(cfg *config.Config, l *applogger.Logger) *FREDClient {
	return &FREDClient{
		baseURL: fredBaseURL,
		apiKey:  cfg.Macro.FredAPIKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		l:       l,
	}
}

type fredResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// GetSeries returns the latest observation of one series.
func (f *FREDClient) GetSeries(ctx context.Context, seriesID, name, unit string) (*models.EconomicIndicator, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("fred: api key not configured")
	}

	var resp fredResponse
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    f.baseURL + "/series/observations",
		QueryParams: map[string][]string{
			"series_id":  {seriesID},
			"api_key":    {f.apiKey},
			"file_type":  {"json"},
			"sort_order": {"desc"},
			"limit":      {"1"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fred series %s: %w", seriesID, err)
	}
	if len(resp.Observations) == 0 {
		return nil, fmt.Errorf("fred series %s: no observations", seriesID)
	}

	obs := resp.Observations[0]
	value, err := strconv.ParseFloat(obs.Value, 64)
	if err != nil {
		return nil, fmt.Errorf("fred series %s: value %q: %w", seriesID, obs.Value, err)
	}
	date, _ := time.Parse("2006-01-02", obs.Date)

	return &models.EconomicIndicator{
		Name:  name,
		Value: value,
		Unit:  unit,
		Date:  date,
	}, nil
}

// GetAllIndicators fetches every tracked series, skipping individual
// failures.
func (f *FREDClient) GetAllIndicators(ctx context.Context) []models.EconomicIndicator {
	out := make([]models.EconomicIndicator, 0, len(fredSeries))
	for _, s := range fredSeries {
		ind, err := f.GetSeries(ctx, s.ID, s.Name, s.Unit)
		if err != nil {
			f.l.Warn("skipping economic indicator",
				applogger.String("series", s.ID),
				applogger.Error(err))
			continue
		}
		out = append(out, *ind)
	}
	return out
}
