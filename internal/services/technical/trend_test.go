package technical

import (
	"testing"

	"CoinPulse/internal/domain/models"
)

func candleWithIndicators(close float64, ind map[string]float64) models.Candle {
	return models.Candle{
		Symbol:     "BTCUSDT",
		Open:       close,
		High:       close,
		Low:        close,
		Close:      close,
		Indicators: ind,
	}
}

func TestClassifyTrendNoIndicators(t *testing.T) {
	trend, strength := classifyTrend(candleWithIndicators(100, nil))
	if trend != models.DirectionNeutral {
		t.Fatalf("expected neutral, got %s", trend)
	}
	if strength != 50.0 {
		t.Fatalf("expected strength 50.0, got %v", strength)
	}
}

func TestClassifyTrendAllBullish(t *testing.T) {
	c := candleWithIndicators(105, map[string]float64{
		"sma_20":      104,
		"sma_50":      102,
		"sma_200":     100,
		"rsi_14":      75,
		"macd":        1.5,
		"macd_signal": 1.0,
		"adx_14":      40,
	})
	trend, strength := classifyTrend(c)
	if trend != models.DirectionBullish {
		t.Fatalf("expected bullish, got %s", trend)
	}
	if strength != 100.0 {
		t.Fatalf("expected strength 100.0, got %v", strength)
	}
}

func TestClassifyTrendAllBearish(t *testing.T) {
	// No adx_14 here: ADX measures conviction, not direction, and a
	// strong reading always votes the bullish bucket, so it cannot be
	// part of an all-bearish fixture.
	c := candleWithIndicators(95, map[string]float64{
		"sma_20":      96,
		"sma_50":      98,
		"sma_200":     100,
		"rsi_14":      25,
		"macd":        -1.5,
		"macd_signal": -1.0,
	})
	trend, strength := classifyTrend(c)
	if trend != models.DirectionBearish {
		t.Fatalf("expected bearish, got %s", trend)
	}
	if strength != 100.0 {
		t.Fatalf("expected strength 100.0, got %v", strength)
	}
}

func TestClassifyTrendStrongADXDilutesBearish(t *testing.T) {
	// Every directional column reads bearish (weights 25+20+15+20 = 80)
	// while adx_14 = 40 adds a bullish conviction vote of weight 16:
	// net = (16-80)/96*100 ≈ -66.7, strength 50+66.7/2 = 83.3.
	c := candleWithIndicators(95, map[string]float64{
		"sma_20":      96,
		"sma_50":      98,
		"sma_200":     100,
		"rsi_14":      25,
		"macd":        -1.5,
		"macd_signal": -1.0,
		"adx_14":      40,
	})
	trend, strength := classifyTrend(c)
	if trend != models.DirectionBearish {
		t.Fatalf("expected bearish, got %s", trend)
	}
	if strength != 83.3 {
		t.Fatalf("expected strength 83.3, got %v", strength)
	}
}

func TestClassifyTrendMixedNeutral(t *testing.T) {
	// Bullish MA cross (25) against bearish MACD (20) with a weak ADX
	// vote (no direction, weight 5): net = (25-20)/50*100 = 10.
	c := candleWithIndicators(100, map[string]float64{
		"sma_20":      101,
		"sma_50":      100,
		"macd":        -0.5,
		"macd_signal": 0.1,
		"adx_14":      15,
	})
	trend, strength := classifyTrend(c)
	if trend != models.DirectionNeutral {
		t.Fatalf("expected neutral, got %s", trend)
	}
	if strength != 40.0 {
		t.Fatalf("expected strength 40.0, got %v", strength)
	}
}

func TestClassifyTrendWeakRSIOnly(t *testing.T) {
	// A lone mid-range RSI reading is a full-weight directional lean on
	// its own bucket, so the net score saturates.
	c := candleWithIndicators(100, map[string]float64{"rsi_14": 60})
	trend, strength := classifyTrend(c)
	if trend != models.DirectionBullish {
		t.Fatalf("expected bullish, got %s", trend)
	}
	if strength != 100.0 {
		t.Fatalf("expected strength 100.0, got %v", strength)
	}
}

func TestCollectSignalsMissingColumns(t *testing.T) {
	// Only macd present, no macd_signal: the MACD vote needs both.
	c := candleWithIndicators(100, map[string]float64{"macd": 1.0})
	signals := collectSignals(c)
	if len(signals) != 0 {
		t.Fatalf("expected no signals, got %d", len(signals))
	}
}

func TestCollectSignalsADXWeightScaling(t *testing.T) {
	c := candleWithIndicators(100, map[string]float64{"adx_14": 30})
	signals := collectSignals(c)
	if len(signals) != 1 {
		t.Fatalf("expected one signal, got %d", len(signals))
	}
	if signals[0].weight != 12.0 {
		t.Fatalf("expected adx weight 12.0, got %v", signals[0].weight)
	}
}
