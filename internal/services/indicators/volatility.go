package indicators

import "math"

// Bollinger computes the 3-band envelope plus the normalized band width
// (upper minus lower as a percentage of the middle band).
func Bollinger(closes []float64, window int, dev float64) (upper, middle, lower, width []float64) {
	n := len(closes)
	upper, middle, lower, width = nanSlice(n), nanSlice(n), nanSlice(n), nanSlice(n)
	if window <= 0 || n < window {
		return upper, middle, lower, width
	}

	middle = SMA(closes, window)
	for i := window - 1; i < n; i++ {
		var variance float64
		for j := i - window + 1; j <= i; j++ {
			diff := closes[j] - middle[i]
			variance += diff * diff
		}
		sd := math.Sqrt(variance / float64(window))
		upper[i] = middle[i] + dev*sd
		lower[i] = middle[i] - dev*sd
		if middle[i] != 0 {
			width[i] = (upper[i] - lower[i]) / middle[i] * 100
		}
	}
	return upper, middle, lower, width
}

// ATR computes the Wilder-smoothed average true range.
func ATR(highs, lows, closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	if window <= 0 || len(closes) < window+1 {
		return out
	}

	tr := trueRange(highs, lows, closes)
	smoothed := wilderSmooth(tr[1:], window)
	for i := window - 1; i < len(smoothed); i++ {
		out[i+1] = smoothed[i]
	}
	return out
}

// trueRange leaves index 0 at the plain high-low range since there is no
// prior close to compare against.
func trueRange(highs, lows, closes []float64) []float64 {
	tr := make([]float64, len(closes))
	if len(closes) == 0 {
		return tr
	}
	tr[0] = highs[0] - lows[0]
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}
