package indicators

import "math"

// RSI computes the Wilder relative strength index over closes.
func RSI(closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	if window <= 0 || len(closes) < window+1 {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	// Smooth the change series excluding the undefined first delta.
	avgGain := wilderSmooth(gains[1:], window)
	avgLoss := wilderSmooth(losses[1:], window)

	for i := window - 1; i < len(avgGain); i++ {
		idx := i + 1
		if avgLoss[i] == 0 {
			out[idx] = 100
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[idx] = 100 - 100/(1+rs)
	}
	return out
}

// Stochastic computes the %K and %D oscillator lines.
func Stochastic(highs, lows, closes []float64, window, smooth int) (k, d []float64) {
	k = nanSlice(len(closes))
	if window <= 0 || len(closes) < window {
		return k, nanSlice(len(closes))
	}

	for i := window - 1; i < len(closes); i++ {
		hh := highs[i]
		ll := lows[i]
		for j := i - window + 1; j < i; j++ {
			if highs[j] > hh {
				hh = highs[j]
			}
			if lows[j] < ll {
				ll = lows[j]
			}
		}
		if hh == ll {
			k[i] = 50
			continue
		}
		k[i] = (closes[i] - ll) / (hh - ll) * 100
	}

	d = smoothNaN(k, smooth)
	return k, d
}

// smoothNaN is an SMA that tolerates a NaN warm-up prefix.
func smoothNaN(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		var sum float64
		defined := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				defined = false
				break
			}
			sum += values[j]
		}
		if defined {
			out[i] = sum / float64(window)
		}
	}
	return out
}
