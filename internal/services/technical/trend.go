package technical

import (
	"math"

	"CoinPulse/internal/domain/models"
)

// tsignal is one weighted directional vote from an indicator column.
// direction is +1/-1 for firm reads, fractional for weak ones, 0 for
// "present but not directional".
type tsignal struct {
	name      string
	direction float64
	weight    float64
}

// collectSignals builds the per-indicator votes from the latest candle.
// A missing column simply contributes no vote.
func collectSignals(latest models.Candle) []tsignal {
	signals := make([]tsignal, 0, 5)

	// Fast vs slow moving average cross.
	if fast, ok := latest.Indicator("sma_20"); ok {
		if slow, ok2 := latest.Indicator("sma_50"); ok2 {
			if fast > slow {
				signals = append(signals, tsignal{"sma_cross", 1, 25})
			} else {
				signals = append(signals, tsignal{"sma_cross", -1, 25})
			}
		}
	}

	// Price relative to the long-term average.
	if long, ok := latest.Indicator("sma_200"); ok {
		if latest.Close > long {
			signals = append(signals, tsignal{"above_sma200", 1, 20})
		} else {
			signals = append(signals, tsignal{"above_sma200", -1, 20})
		}
	}

	// RSI: extremes read as continuation, mid-range as a weak lean.
	if rsi, ok := latest.Indicator("rsi_14"); ok {
		switch {
		case rsi > 70:
			signals = append(signals, tsignal{"rsi", 1, 15})
		case rsi < 30:
			signals = append(signals, tsignal{"rsi", -1, 15})
		case rsi > 50:
			signals = append(signals, tsignal{"rsi", 0.5, 10})
		default:
			signals = append(signals, tsignal{"rsi", -0.5, 10})
		}
	}

	// MACD line vs signal line.
	if macd, ok := latest.Indicator("macd"); ok {
		if sig, ok2 := latest.Indicator("macd_signal"); ok2 {
			if macd > sig {
				signals = append(signals, tsignal{"macd", 1, 20})
			} else {
				signals = append(signals, tsignal{"macd", -1, 20})
			}
		}
	}

	// ADX measures conviction, not direction: above 25 it amplifies the
	// bullish bucket with a weight scaled by the reading; below it only
	// dilutes the total.
	if adx, ok := latest.Indicator("adx_14"); ok {
		if adx > 25 {
			signals = append(signals, tsignal{"adx", 1, math.Min(adx/50*20, 20)})
		} else {
			signals = append(signals, tsignal{"adx", 0, 5})
		}
	}

	return signals
}

// classifyTrend fuses the weighted votes into a trend label and a 0-100
// strength score. With no usable columns the result is neutral/50.
func classifyTrend(latest models.Candle) (models.Direction, float64) {
	signals := collectSignals(latest)

	var bullish, bearish, total float64
	for _, s := range signals {
		if s.direction > 0 {
			bullish += s.weight
		} else if s.direction < 0 {
			bearish += s.weight
		}
		total += s.weight
	}

	if total == 0 {
		return models.DirectionNeutral, 50.0
	}

	netScore := (bullish - bearish) / total * 100

	var trend models.Direction
	var strength float64
	switch {
	case netScore > 20:
		trend = models.DirectionBullish
		strength = math.Min(50+netScore/2, 100)
	case netScore < -20:
		trend = models.DirectionBearish
		strength = math.Min(50+math.Abs(netScore)/2, 100)
	default:
		trend = models.DirectionNeutral
		strength = 50 - math.Abs(netScore)
	}

	return trend, math.Round(strength*10) / 10
}
