package indicators

import "math"

// MACD computes the moving average convergence divergence line, its
// signal line and the histogram. Standard periods are 12/26/9.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	n := len(closes)
	line, sig, hist = nanSlice(n), nanSlice(n), nanSlice(n)
	if fast <= 0 || slow <= fast || signal <= 0 || n < slow {
		return line, sig, hist
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	for i := slow - 1; i < n; i++ {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	// Signal line is an EMA of the defined part of the MACD line.
	defined := line[slow-1:]
	sigPart := EMA(defined, signal)
	for i, v := range sigPart {
		if !math.IsNaN(v) {
			sig[slow-1+i] = v
			hist[slow-1+i] = line[slow-1+i] - v
		}
	}
	return line, sig, hist
}

// ADX computes the Wilder average directional index.
func ADX(highs, lows, closes []float64, window int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if window <= 0 || n < 2*window {
		return out
	}

	plusDM := make([]float64, n-1)
	minusDM := make([]float64, n-1)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
	}

	tr := trueRange(highs, lows, closes)
	smTR := wilderSmooth(tr[1:], window)
	smPlus := wilderSmooth(plusDM, window)
	smMinus := wilderSmooth(minusDM, window)

	dx := nanSlice(len(smTR))
	for i := window - 1; i < len(smTR); i++ {
		if smTR[i] == 0 {
			dx[i] = 0
			continue
		}
		pdi := smPlus[i] / smTR[i] * 100
		mdi := smMinus[i] / smTR[i] * 100
		if pdi+mdi == 0 {
			dx[i] = 0
			continue
		}
		dx[i] = math.Abs(pdi-mdi) / (pdi + mdi) * 100
	}

	// dx index j maps to candle j+1; the chopped slice shifts that by
	// another window-1, so adx index i lands on candle i+window.
	adx := wilderSmooth(dx[window-1:], window)
	for i := window - 1; i < len(adx); i++ {
		out[i+window] = adx[i]
	}
	return out
}
