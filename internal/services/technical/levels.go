package technical

import (
	"sort"

	"CoinPulse/internal/domain/models"
)

const levelsLookback = 50

// calculateLevels computes classic three-point pivot levels over the
// trailing window and merges in the three highest highs and three lowest
// lows as additional candidates. The union is intentionally not
// deduplicated: coinciding extremes and pivot levels are a valid outcome.
func calculateLevels(window []models.Candle, lookback int) models.SupportResistance {
	if lookback <= 0 {
		lookback = levelsLookback
	}
	recent := models.Tail(window, lookback)
	if len(recent) == 0 {
		return models.SupportResistance{}
	}

	high := recent[0].High
	low := recent[0].Low
	for _, c := range recent {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	close := recent[len(recent)-1].Close

	pivot := (high + low + close) / 3

	r1 := 2*pivot - low
	r2 := pivot + (high - low)
	r3 := high + 2*(pivot-low)

	s1 := 2*pivot - high
	s2 := pivot - (high - low)
	s3 := low - 2*(high-pivot)

	highs := models.Highs(recent)
	lows := models.Lows(recent)
	sort.Sort(sort.Reverse(sort.Float64Slice(highs)))
	sort.Float64s(lows)

	resistance := append([]float64{r1, r2, r3}, topN(highs, 3)...)
	support := append([]float64{s1, s2, s3}, topN(lows, 3)...)

	sort.Sort(sort.Reverse(sort.Float64Slice(resistance)))
	sort.Float64s(support)

	return models.SupportResistance{
		Pivot:      pivot,
		Resistance: resistance,
		Support:    support,
	}
}

func topN(sorted []float64, n int) []float64 {
	if len(sorted) < n {
		n = len(sorted)
	}
	out := make([]float64, n)
	copy(out, sorted[:n])
	return out
}
