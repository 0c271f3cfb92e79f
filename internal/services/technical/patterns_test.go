package technical

import (
	"math"
	"testing"

	"CoinPulse/internal/domain/models"
)

// makeWindow builds n candles from parallel high/low series; closes sit at
// the midpoint.
func makeWindow(highs, lows []float64) []models.Candle {
	window := make([]models.Candle, len(highs))
	for i := range highs {
		mid := (highs[i] + lows[i]) / 2
		window[i] = models.Candle{
			Symbol: "BTCUSDT",
			Open:   mid,
			High:   highs[i],
			Low:    lows[i],
			Close:  mid,
		}
	}
	return window
}

func TestDetectDoubleTop(t *testing.T) {
	highs := make([]float64, doubleLookback)
	lows := make([]float64, doubleLookback)
	for i := range highs {
		highs[i] = 80
		lows[i] = 60 + float64(i)*0.1
	}
	highs[10] = 100
	highs[40] = 99 // within 2% of the peak

	p := detectDoubleTopBottom(makeWindow(highs, lows))
	if p == nil {
		t.Fatalf("expected double top")
	}
	if p.Name != "Double Top" {
		t.Fatalf("expected Double Top, got %s", p.Name)
	}
	if p.Direction != models.DirectionBearish {
		t.Fatalf("expected bearish, got %s", p.Direction)
	}
	if p.PriceLevel != 100 {
		t.Fatalf("expected level 100, got %v", p.PriceLevel)
	}
	if p.Confidence != 0.6 {
		t.Fatalf("expected confidence 0.6, got %v", p.Confidence)
	}
}

func TestDetectDoubleBottom(t *testing.T) {
	highs := make([]float64, doubleLookback)
	lows := make([]float64, doubleLookback)
	for i := range highs {
		// Geometric spacing above 2% keeps the highs from pairing up.
		highs[i] = 100 * math.Pow(1.03, float64(i))
		lows[i] = 90
	}
	lows[5] = 50
	lows[45] = 50.5 // within 2% of the trough

	p := detectDoubleTopBottom(makeWindow(highs, lows))
	if p == nil {
		t.Fatalf("expected double bottom")
	}
	if p.Name != "Double Bottom" {
		t.Fatalf("expected Double Bottom, got %s", p.Name)
	}
	if p.Direction != models.DirectionBullish {
		t.Fatalf("expected bullish, got %s", p.Direction)
	}
	if p.PriceLevel != 50 {
		t.Fatalf("expected level 50, got %v", p.PriceLevel)
	}
}

func TestDetectDoubleTopPrecedence(t *testing.T) {
	// Both a double top and a double bottom are present; the top wins.
	highs := make([]float64, doubleLookback)
	lows := make([]float64, doubleLookback)
	for i := range highs {
		highs[i] = 100
		lows[i] = 50
	}
	p := detectDoubleTopBottom(makeWindow(highs, lows))
	if p == nil || p.Name != "Double Top" {
		t.Fatalf("expected Double Top, got %+v", p)
	}
}

func TestDetectDoubleTopBottomShortWindow(t *testing.T) {
	highs := make([]float64, doubleLookback-1)
	lows := make([]float64, doubleLookback-1)
	for i := range highs {
		highs[i] = 100
		lows[i] = 50
	}
	if p := detectDoubleTopBottom(makeWindow(highs, lows)); p != nil {
		t.Fatalf("expected nil on short window, got %+v", p)
	}
}

func TestDetectSymmetricalTriangle(t *testing.T) {
	highs := make([]float64, triangleLookback)
	lows := make([]float64, triangleLookback)
	for i := range highs {
		highs[i] = 110 - float64(i)*0.5
		lows[i] = 90 + float64(i)*0.5
	}
	p := detectTriangle(makeWindow(highs, lows))
	if p == nil {
		t.Fatalf("expected symmetrical triangle")
	}
	if p.Name != "Symmetrical Triangle" {
		t.Fatalf("expected Symmetrical Triangle, got %s", p.Name)
	}
	if p.Direction != models.DirectionNeutral {
		t.Fatalf("expected neutral, got %s", p.Direction)
	}
}

func TestDetectAscendingTriangle(t *testing.T) {
	highs := make([]float64, triangleLookback)
	lows := make([]float64, triangleLookback)
	for i := range highs {
		highs[i] = 110 // flat ceiling
		lows[i] = 90 + float64(i)*0.5
	}
	p := detectTriangle(makeWindow(highs, lows))
	if p == nil || p.Name != "Ascending Triangle" {
		t.Fatalf("expected Ascending Triangle, got %+v", p)
	}
	if p.Direction != models.DirectionBullish {
		t.Fatalf("expected bullish, got %s", p.Direction)
	}
}

func TestDetectDescendingTriangle(t *testing.T) {
	highs := make([]float64, triangleLookback)
	lows := make([]float64, triangleLookback)
	for i := range highs {
		highs[i] = 110 - float64(i)*0.5
		lows[i] = 90 // flat floor
	}
	p := detectTriangle(makeWindow(highs, lows))
	if p == nil || p.Name != "Descending Triangle" {
		t.Fatalf("expected Descending Triangle, got %+v", p)
	}
	if p.Direction != models.DirectionBearish {
		t.Fatalf("expected bearish, got %s", p.Direction)
	}
}

func TestDetectTriangleNoPattern(t *testing.T) {
	highs := make([]float64, triangleLookback)
	lows := make([]float64, triangleLookback)
	for i := range highs {
		// Parallel rising channel: both slopes positive and comparable.
		highs[i] = 110 + float64(i)*0.5
		lows[i] = 90 + float64(i)*0.5
	}
	if p := detectTriangle(makeWindow(highs, lows)); p != nil {
		t.Fatalf("expected nil, got %+v", p)
	}
}

func TestLeastSquaresSlope(t *testing.T) {
	ys := []float64{1, 3, 5, 7}
	got := leastSquaresSlope(ys)
	if math.Abs(got-2) > 1e-12 {
		t.Fatalf("expected slope 2, got %v", got)
	}
	if leastSquaresSlope([]float64{5}) != 0 {
		t.Fatalf("expected zero slope for single point")
	}
}

func TestDefaultDetectorOrder(t *testing.T) {
	want := []string{"double_top_bottom", "head_shoulders", "triangle", "channel", "wedge"}
	detectors := defaultDetectors()
	if len(detectors) != len(want) {
		t.Fatalf("expected %d detectors, got %d", len(want), len(detectors))
	}
	for i, d := range detectors {
		if d.name != want[i] {
			t.Fatalf("detector %d: expected %s, got %s", i, want[i], d.name)
		}
	}
}
