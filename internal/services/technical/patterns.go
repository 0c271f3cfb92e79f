package technical

import (
	"CoinPulse/internal/domain/models"
)

// detector inspects a candle window and returns at most one pattern.
// Detectors are pure and independent; a window may yield zero or one
// pattern per detector type.
type detector struct {
	name string
	fn   func(window []models.Candle) *models.DetectedPattern
}

// defaultDetectors is the fixed registry. Execution order is the order in
// which non-nil results are appended to the pattern list, so it also fixes
// any downstream equal-weight tie-break. New detectors are added by
// appending here, not by touching the aggregator.
func defaultDetectors() []detector {
	return []detector{
		{"double_top_bottom", detectDoubleTopBottom},
		{"head_shoulders", detectHeadShoulders},
		{"triangle", detectTriangle},
		{"channel", detectChannel},
		{"wedge", detectWedge},
	}
}

const (
	doubleLookback   = 50
	doubleTolerance  = 0.02
	triangleLookback = 30
	// A side counts as flat when its slope magnitude is below this
	// fraction of the dominant side's slope.
	triangleFlatRatio = 0.3
)

// detectDoubleTopBottom looks for a second touch within 2% of the window
// extreme. Tops take precedence over bottoms.
func detectDoubleTopBottom(window []models.Candle) *models.DetectedPattern {
	if len(window) < doubleLookback {
		return nil
	}
	recent := models.Tail(window, doubleLookback)

	maxIdx, maxVal := 0, recent[0].High
	minIdx, minVal := 0, recent[0].Low
	for i, c := range recent {
		if c.High > maxVal {
			maxIdx, maxVal = i, c.High
		}
		if c.Low < minVal {
			minIdx, minVal = i, c.Low
		}
	}

	tolerance := maxVal * doubleTolerance
	for i, c := range recent {
		if i == maxIdx {
			continue
		}
		if c.High > maxVal-tolerance {
			return &models.DetectedPattern{
				Name:        "Double Top",
				Direction:   models.DirectionBearish,
				Confidence:  0.6,
				PriceLevel:  maxVal,
				Description: "Double top forming; potential reversal to the downside.",
			}
		}
	}

	tolerance = minVal * doubleTolerance
	for i, c := range recent {
		if i == minIdx {
			continue
		}
		if c.Low < minVal+tolerance {
			return &models.DetectedPattern{
				Name:        "Double Bottom",
				Direction:   models.DirectionBullish,
				Confidence:  0.6,
				PriceLevel:  minVal,
				Description: "Double bottom forming; potential reversal to the upside.",
			}
		}
	}

	return nil
}

// detectTriangle fits independent least-squares lines to the highs and lows
// of the trailing window and classifies the convergence shape. Slopes are
// taken on raw prices, matching the reference behavior.
func detectTriangle(window []models.Candle) *models.DetectedPattern {
	if len(window) < triangleLookback {
		return nil
	}
	recent := models.Tail(window, triangleLookback)

	highSlope := leastSquaresSlope(models.Highs(recent))
	lowSlope := leastSquaresSlope(models.Lows(recent))

	switch {
	case highSlope < 0 && lowSlope > 0:
		return &models.DetectedPattern{
			Name:        "Symmetrical Triangle",
			Direction:   models.DirectionNeutral,
			Confidence:  0.5,
			Description: "Symmetrical triangle forming; watch the breakout direction.",
		}
	case highSlope < 0 && abs(lowSlope) < abs(highSlope)*triangleFlatRatio:
		return &models.DetectedPattern{
			Name:        "Descending Triangle",
			Direction:   models.DirectionBearish,
			Confidence:  0.55,
			Description: "Descending triangle forming; potential break lower.",
		}
	case lowSlope > 0 && abs(highSlope) < abs(lowSlope)*triangleFlatRatio:
		return &models.DetectedPattern{
			Name:        "Ascending Triangle",
			Direction:   models.DirectionBullish,
			Confidence:  0.55,
			Description: "Ascending triangle forming; potential break higher.",
		}
	}

	return nil
}

// detectHeadShoulders is a reserved extension point.
func detectHeadShoulders(window []models.Candle) *models.DetectedPattern { return nil }

// detectChannel is a reserved extension point.
func detectChannel(window []models.Candle) *models.DetectedPattern { return nil }

// detectWedge is a reserved extension point.
func detectWedge(window []models.Candle) *models.DetectedPattern { return nil }

// leastSquaresSlope returns the slope of the ordinary least-squares line
// fitted to ys against x = 0..n-1.
func leastSquaresSlope(ys []float64) float64 {
	n := float64(len(ys))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
