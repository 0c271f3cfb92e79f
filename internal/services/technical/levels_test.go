package technical

import (
	"math"
	"testing"

	"CoinPulse/internal/domain/models"
)

func TestCalculateLevelsFlatWindow(t *testing.T) {
	window := make([]models.Candle, 50)
	for i := range window {
		window[i] = models.Candle{Open: 100, High: 100, Low: 100, Close: 100}
	}

	levels := calculateLevels(window, levelsLookback)
	if levels.Pivot != 100 {
		t.Fatalf("expected pivot 100, got %v", levels.Pivot)
	}
	if len(levels.Resistance) != 6 || len(levels.Support) != 6 {
		t.Fatalf("expected 6 resistance and 6 support levels, got %d/%d",
			len(levels.Resistance), len(levels.Support))
	}
	for _, v := range append(levels.Resistance, levels.Support...) {
		if v != 100 {
			t.Fatalf("expected all levels at 100, got %v", v)
		}
	}
}

func TestCalculateLevelsKnownWindow(t *testing.T) {
	window := []models.Candle{
		{High: 110, Low: 90, Close: 100},
		{High: 105, Low: 95, Close: 100},
	}

	levels := calculateLevels(window, levelsLookback)
	if levels.Pivot != 100 {
		t.Fatalf("expected pivot 100, got %v", levels.Pivot)
	}

	wantRes := []float64{130, 120, 110, 110, 105}
	wantSup := []float64{70, 80, 90, 90, 95}
	if len(levels.Resistance) != len(wantRes) {
		t.Fatalf("expected %d resistance levels, got %d", len(wantRes), len(levels.Resistance))
	}
	for i, v := range wantRes {
		if math.Abs(levels.Resistance[i]-v) > 1e-9 {
			t.Fatalf("resistance[%d]: expected %v, got %v", i, v, levels.Resistance[i])
		}
	}
	for i, v := range wantSup {
		if math.Abs(levels.Support[i]-v) > 1e-9 {
			t.Fatalf("support[%d]: expected %v, got %v", i, v, levels.Support[i])
		}
	}
}

func TestCalculateLevelsOrdering(t *testing.T) {
	window := make([]models.Candle, 60)
	for i := range window {
		base := 100 + math.Sin(float64(i))*10
		window[i] = models.Candle{High: base + 5, Low: base - 5, Close: base}
	}

	levels := calculateLevels(window, levelsLookback)
	for i := 1; i < len(levels.Resistance); i++ {
		if levels.Resistance[i] > levels.Resistance[i-1] {
			t.Fatalf("resistance not descending at %d", i)
		}
	}
	for i := 1; i < len(levels.Support); i++ {
		if levels.Support[i] < levels.Support[i-1] {
			t.Fatalf("support not ascending at %d", i)
		}
	}
}

func TestCalculateLevelsEmptyWindow(t *testing.T) {
	levels := calculateLevels(nil, levelsLookback)
	if levels.Pivot != 0 || levels.Resistance != nil || levels.Support != nil {
		t.Fatalf("expected zero value, got %+v", levels)
	}
}
