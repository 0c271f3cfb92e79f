// Package marketdata holds the exchange and market-context clients: candle
// sources, the live trade stream and the spot/news/sentiment providers.
package marketdata

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

const (
	defaultBybitURL      = "https://api.bybit.com"
	defaultBybitCategory = "spot"
	maxBybitLimit        = 1000
)

// bybitIntervals maps internal timeframes to Bybit V5 kline intervals.
var bybitIntervals = map[drepo.Timeframe]string{
	drepo.TF1d: "D",
	drepo.TF1w: "W",
	drepo.TF1M: "M",
}

// BybitClient fetches historical candles from the Bybit V5 market API.
type BybitClient struct {
	baseURL  string
	category string
	client   *xhttp.Client
	l        *applogger.Logger
}

func NewBybitClient(cfg *config.Config, l *applogger.Logger) drepo.CandleSource {
	baseURL := cfg.Bybit.BaseURL
	if baseURL == "" {
		baseURL = defaultBybitURL
	}
	category := cfg.Bybit.Category
	if category == "" {
		category = defaultBybitCategory
	}
	timeout := cfg.Bybit.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &BybitClient{
		baseURL:  baseURL,
		category: category,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		l:        l,
	}
}

type bybitKlineResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Symbol string     `json:"symbol"`
		List   [][]string `json:"list"`
	} `json:"result"`
}

// GetKlines fetches up to limit candles and returns them ascending by
// timestamp. Bybit delivers rows newest-first as string tuples
// [startMs, open, high, low, close, volume, turnover].
func (b *BybitClient) GetKlines(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	interval, ok := bybitIntervals[tf]
	if !ok {
		return nil, fmt.Errorf("bybit: unsupported timeframe %s", tf)
	}
	if limit <= 0 || limit > maxBybitLimit {
		limit = maxBybitLimit
	}

	var resp bybitKlineResponse
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    b.baseURL + "/v5/market/kline",
		QueryParams: map[string][]string{
			"category": {b.category},
			"symbol":   {symbol},
			"interval": {interval},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("bybit kline: %w", err)
	}
	if resp.RetCode != 0 {
		return nil, fmt.Errorf("bybit kline: retCode %d: %s", resp.RetCode, resp.RetMsg)
	}

	candles := make([]models.Candle, 0, len(resp.Result.List))
	for _, row := range resp.Result.List {
		c, err := parseBybitRow(symbol, row)
		if err != nil {
			b.l.Warn("skipping malformed kline row", applogger.Error(err))
			continue
		}
		candles = append(candles, c)
	}
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	b.l.Debug("fetched bybit klines",
		applogger.String("symbol", symbol),
		applogger.String("interval", interval),
		applogger.Int("count", len(candles)))
	return candles, nil
}

func parseBybitRow(symbol string, row []string) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("kline row has %d fields", len(row))
	}
	ms, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("start time: %w", err)
	}
	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return models.Candle{
		Timestamp: time.UnixMilli(ms).UTC(),
		Symbol:    symbol,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}
