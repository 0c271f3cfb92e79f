package marketdata

import (
	"context"
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

const defaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// coinIDs maps trading symbols to CoinGecko coin identifiers.
var coinIDs = map[string]string{
	"BTCUSDT": "bitcoin",
	"ETHUSDT": "ethereum",
	"SOLUSDT": "solana",
}

// CoinGeckoClient fetches the current spot snapshot and global market
// stats used in the fundamental context block.
type CoinGeckoClient struct {
	baseURL string
	client  *xhttp.Client
	l       *applogger.Logger
}

func NewCoinGeckoClient(cfg *config.Config, l *applogger.Logger) *CoinGeckoClient {
	baseURL := cfg.MarketData.CoinGeckoURL
	if baseURL == "" {
		baseURL = defaultCoinGeckoURL
	}
	return &CoinGeckoClient{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		l:       l,
	}
}

type cgCoinResponse struct {
	MarketData struct {
		CurrentPrice           map[string]float64 `json:"current_price"`
		MarketCap              map[string]float64 `json:"market_cap"`
		TotalVolume            map[string]float64 `json:"total_volume"`
		PriceChangePct24h      float64            `json:"price_change_percentage_24h"`
		PriceChangePct7d       float64            `json:"price_change_percentage_7d"`
		PriceChangePct30d      float64            `json:"price_change_percentage_30d"`
	} `json:"market_data"`
}

// GetSnapshot returns the current market snapshot for the symbol.
func (g *CoinGeckoClient) GetSnapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	coinID, ok := coinIDs[symbol]
	if !ok {
		return nil, fmt.Errorf("coingecko: unknown symbol %s", symbol)
	}

	var resp cgCoinResponse
	err := g.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    g.baseURL + "/coins/" + coinID,
		QueryParams: map[string][]string{
			"localization":   {"false"},
			"tickers":        {"false"},
			"community_data": {"false"},
			"developer_data": {"false"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("coingecko snapshot: %w", err)
	}

	snap := &models.MarketSnapshot{
		Symbol:       symbol,
		PriceUSD:     resp.MarketData.CurrentPrice["usd"],
		MarketCapUSD: resp.MarketData.MarketCap["usd"],
		Volume24hUSD: resp.MarketData.TotalVolume["usd"],
		Change24hPct: resp.MarketData.PriceChangePct24h,
		Change7dPct:  resp.MarketData.PriceChangePct7d,
		FetchedAt:    time.Now().UTC(),
	}
	g.l.Debug("fetched market snapshot",
		applogger.String("symbol", symbol),
		applogger.Float64("price_usd", snap.PriceUSD))
	return snap, nil
}

type cgGlobalResponse struct {
	Data struct {
		TotalMarketCap      map[string]float64 `json:"total_market_cap"`
		TotalVolume         map[string]float64 `json:"total_volume"`
		MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
		MarketCapChange24h  float64            `json:"market_cap_change_percentage_24h_usd"`
	} `json:"data"`
}

// GlobalStats summarizes the whole crypto market.
type GlobalStats struct {
	TotalMarketCapUSD float64
	TotalVolume24hUSD float64
	BTCDominancePct   float64
	ETHDominancePct   float64
	MarketCapChange   float64
}

// GetGlobalStats returns aggregate crypto market statistics.
func (g *CoinGeckoClient) GetGlobalStats(ctx context.Context) (*GlobalStats, error) {
	var resp cgGlobalResponse
	err := g.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    g.baseURL + "/global",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("coingecko global: %w", err)
	}
	return &GlobalStats{
		TotalMarketCapUSD: resp.Data.TotalMarketCap["usd"],
		TotalVolume24hUSD: resp.Data.TotalVolume["usd"],
		BTCDominancePct:   resp.Data.MarketCapPercentage["btc"],
		ETHDominancePct:   resp.Data.MarketCapPercentage["eth"],
		MarketCapChange:   resp.Data.MarketCapChange24h,
	}, nil
}
