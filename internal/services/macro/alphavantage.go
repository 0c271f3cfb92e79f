package macro

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

const alphaVantageBaseURL = "https://www.alphavantage.co/query"

// defaultStockSymbols are the equity/ETF proxies quoted for macro
// context when none are configured.
var defaultStockSymbols = []string{"SPY", "QQQ", "GLD"}

// AlphaVantageClient fetches equity/ETF quotes.
type AlphaVantageClient struct {
	baseURL string
	apiKey  string
	symbols []string
	client  *xhttp.Client
	l       *applogger.Logger
}

func NewAlphaVantageClient(cfg *config.Config, l *applogger.Logger) *AlphaVantageClient {
	symbols := cfg.Macro.StockSymbols
	if len(symbols) == 0 {
		symbols = defaultStockSymbols
	}
	return &AlphaVantageClient{
		baseURL: alphaVantageBaseURL,
		apiKey:  cfg.Macro.AlphaVantageAPIKey,
		symbols: symbols,
		client:  xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		l:       l,
	}
}

type avQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// GetQuote returns the latest quote for one symbol.
func (a *AlphaVantageClient) GetQuote(ctx context.Context, symbol string) (*models.StockQuote, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("alphavantage: api key not configured")
	}

	var resp avQuoteResponse
	err := a.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    a.baseURL,
		QueryParams: map[string][]string{
			"function": {"GLOBAL_QUOTE"},
			"symbol":   {symbol},
			"apikey":   {a.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("alphavantage quote %s: %w", symbol, err)
	}
	if resp.GlobalQuote.Price == "" {
		return nil, fmt.Errorf("alphavantage quote %s: empty response", symbol)
	}

	price, err := strconv.ParseFloat(resp.GlobalQuote.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("alphavantage quote %s: price %q: %w", symbol, resp.GlobalQuote.Price, err)
	}
	changePct, _ := strconv.ParseFloat(strings.TrimSuffix(resp.GlobalQuote.ChangePercent, "%"), 64)

	return &models.StockQuote{
		Symbol:    symbol,
		Price:     price,
		ChangePct: changePct,
	}, nil
}

// GetQuotes fetches all configured symbols, skipping individual failures.
func (a *AlphaVantageClient) GetQuotes(ctx context.Context) []models.StockQuote {
	out := make([]models.StockQuote, 0, len(a.symbols))
	for _, s := range a.symbols {
		q, err := a.GetQuote(ctx, s)
		if err != nil {
			a.l.Warn("skipping stock quote",
				applogger.String("symbol", s),
				applogger.Error(err))
			continue
		}
		out = append(out, *q)
	}
	return out
}
