package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/pkg/config"
	applogger "CoinPulse/pkg/logger"
)

// binanceIntervals maps internal timeframes to Binance kline intervals.
var binanceIntervals = map[drepo.Timeframe]string{
	drepo.TF1d: "1d",
	drepo.TF1w: "1w",
	drepo.TF1M: "1M",
}

// BinanceClient is the fallback candle source used when the primary
// exchange is unreachable.
type BinanceClient struct {
	client *binance.Client
	l      *applogger.Logger
}

func NewBinanceClient(cfg *config.Config, l *applogger.Logger) drepo.CandleSource {
	return &BinanceClient{
		client: binance.NewClient(cfg.Binance.APIKey, cfg.Binance.SecretKey),
		l:      l,
	}
}

func (b *BinanceClient) GetKlines(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	interval, ok := binanceIntervals[tf]
	if !ok {
		return nil, fmt.Errorf("binance: unsupported timeframe %s", tf)
	}
	if limit <= 0 {
		limit = 500
	}

	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines: %w", err)
	}

	candles := make([]models.Candle, 0, len(klines))
	for _, k := range klines {
		c, err := parseBinanceKline(symbol, k)
		if err != nil {
			b.l.Warn("skipping malformed kline", applogger.Error(err))
			continue
		}
		candles = append(candles, c)
	}

	b.l.Debug("fetched binance klines",
		applogger.String("symbol", symbol),
		applogger.String("interval", interval),
		applogger.Int("count", len(candles)))
	return candles, nil
}

func parseBinanceKline(symbol string, k *binance.Kline) (models.Candle, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("open: %w", err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("high: %w", err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("low: %w", err)
	}
	cls, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("close: %w", err)
	}
	vol, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("volume: %w", err)
	}
	return models.Candle{
		Timestamp: time.UnixMilli(k.OpenTime).UTC(),
		Symbol:    symbol,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     cls,
		Volume:    vol,
	}, nil
}

// FallbackSource tries the primary source first and falls back to the
// secondary on any error.
type FallbackSource struct {
	primary   drepo.CandleSource
	secondary drepo.CandleSource
	l         *applogger.Logger
}

func NewFallbackSource(primary, secondary drepo.CandleSource, l *applogger.Logger) drepo.CandleSource {
	return &FallbackSource{primary: primary, secondary: secondary, l: l}
}

func (f *FallbackSource) GetKlines(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	candles, err := f.primary.GetKlines(ctx, symbol, tf, limit)
	if err == nil {
		return candles, nil
	}
	if f.secondary == nil {
		return nil, err
	}
	f.l.Warn("primary candle source failed, using fallback", applogger.Error(err))
	return f.secondary.GetKlines(ctx, symbol, tf, limit)
}
