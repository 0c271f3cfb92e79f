package indicators

import (
	"math"

	"CoinPulse/internal/domain/models"
	applogger "CoinPulse/pkg/logger"
)

// Standard enrichment periods.
const (
	smaFast    = 20
	smaMid     = 50
	smaSlow    = 200
	emaFast    = 12
	emaSlow    = 26
	macdSignal = 9
	rsiPeriod  = 14
	bbWindow   = 20
	bbDev      = 2.0
	atrPeriod  = 14
	adxPeriod  = 14
	stochK     = 14
	stochD     = 3
	volumeSMA  = 20
)

// Enricher attaches the standard indicator column set to candle windows.
// Columns stay absent for positions where the warm-up period has not
// elapsed; downstream code treats a missing column as "no vote".
type Enricher struct {
	l *applogger.Logger
}

func NewEnricher(l *applogger.Logger) *Enricher {
	return &Enricher{l: l}
}

// Enrich computes every column over the window and attaches the defined
// values in place. The input order must be ascending by timestamp.
func (e *Enricher) Enrich(candles []models.Candle) []models.Candle {
	if len(candles) == 0 {
		return candles
	}

	closes := models.Closes(candles)
	highs := models.Highs(candles)
	lows := models.Lows(candles)
	volumes := models.Volumes(candles)

	attach(candles, "sma_20", SMA(closes, smaFast))
	attach(candles, "sma_50", SMA(closes, smaMid))
	attach(candles, "sma_200", SMA(closes, smaSlow))
	attach(candles, "ema_12", EMA(closes, emaFast))
	attach(candles, "ema_26", EMA(closes, emaSlow))

	upper, middle, lower, width := Bollinger(closes, bbWindow, bbDev)
	attach(candles, "bb_upper", upper)
	attach(candles, "bb_middle", middle)
	attach(candles, "bb_lower", lower)
	attach(candles, "bb_width", width)

	attach(candles, "rsi_14", RSI(closes, rsiPeriod))

	macd, signal, hist := MACD(closes, emaFast, emaSlow, macdSignal)
	attach(candles, "macd", macd)
	attach(candles, "macd_signal", signal)
	attach(candles, "macd_histogram", hist)

	attach(candles, "atr_14", ATR(highs, lows, closes, atrPeriod))
	attach(candles, "adx_14", ADX(highs, lows, closes, adxPeriod))

	k, d := Stochastic(highs, lows, closes, stochK, stochD)
	attach(candles, "stoch_k", k)
	attach(candles, "stoch_d", d)

	volSMA := SMA(volumes, volumeSMA)
	attach(candles, "volume_sma_20", volSMA)
	ratio := nanSlice(len(volumes))
	for i, v := range volSMA {
		if !math.IsNaN(v) && v != 0 {
			ratio[i] = volumes[i] / v
		}
	}
	attach(candles, "volume_ratio", ratio)

	if e.l != nil {
		e.l.Debug("enriched candle window", applogger.Int("candles", len(candles)))
	}
	return candles
}

func attach(candles []models.Candle, name string, series []float64) {
	for i, v := range series {
		if !math.IsNaN(v) {
			candles[i].SetIndicator(name, v)
		}
	}
}
