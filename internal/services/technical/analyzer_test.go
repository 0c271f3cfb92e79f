package technical

import (
	"strings"
	"testing"

	"CoinPulse/internal/domain/models"
)

func bullishWindow(n int) []models.Candle {
	window := make([]models.Candle, n)
	for i := range window {
		price := 100 * (1 + float64(i)*0.03)
		window[i] = models.Candle{
			Symbol: "BTCUSDT",
			Open:   price,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 1000,
		}
	}
	last := &window[n-1]
	last.SetIndicator("sma_20", last.Close*0.98)
	last.SetIndicator("sma_50", last.Close*0.95)
	last.SetIndicator("sma_200", last.Close*0.90)
	last.SetIndicator("rsi_14", 75)
	last.SetIndicator("macd", 2.0)
	last.SetIndicator("macd_signal", 1.5)
	last.SetIndicator("adx_14", 40)
	return window
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	a := NewAnalyzer(nil)
	if _, err := a.Analyze(nil); err == nil {
		t.Fatalf("expected error on empty window")
	}
}

func TestAnalyzeBullishWindow(t *testing.T) {
	a := NewAnalyzer(nil)
	result, err := a.Analyze(bullishWindow(60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Symbol != "BTCUSDT" {
		t.Fatalf("expected symbol BTCUSDT, got %s", result.Symbol)
	}
	if result.Trend != models.DirectionBullish {
		t.Fatalf("expected bullish, got %s", result.Trend)
	}
	if result.Strength != 100.0 {
		t.Fatalf("expected strength 100.0, got %v", result.Strength)
	}
	if !strings.Contains(result.Summary, "uptrend") {
		t.Fatalf("summary missing trend label: %s", result.Summary)
	}
	if !strings.Contains(result.Summary, "overbought") {
		t.Fatalf("summary missing RSI note: %s", result.Summary)
	}
	if _, ok := result.Indicators["current_price"]; !ok {
		t.Fatalf("snapshot missing current_price")
	}
	if _, ok := result.Indicators["volume"]; !ok {
		t.Fatalf("snapshot missing volume")
	}
	if result.SupportResistance.Pivot == 0 {
		t.Fatalf("expected non-zero pivot")
	}
	if result.GeneratedAt.IsZero() {
		t.Fatalf("expected GeneratedAt to be set")
	}
}

func TestDetectPatternsPanicRecovery(t *testing.T) {
	a := &Analyzer{detectors: []detector{
		{"boom", func([]models.Candle) *models.DetectedPattern { panic("bad detector") }},
		{"ok", func([]models.Candle) *models.DetectedPattern {
			return &models.DetectedPattern{Name: "Fixture", Direction: models.DirectionNeutral}
		}},
	}}
	patterns := a.detectPatterns(bullishWindow(10))
	if len(patterns) != 1 {
		t.Fatalf("expected one pattern after recovery, got %d", len(patterns))
	}
	if patterns[0].Name != "Fixture" {
		t.Fatalf("expected Fixture, got %s", patterns[0].Name)
	}
}

func TestIndicatorSnapshotRounding(t *testing.T) {
	c := models.Candle{Close: 123.4567, Volume: 10.005}
	c.SetIndicator("rsi_14", 55.5555)
	snap := indicatorSnapshot(c)
	if snap["rsi_14"] != 55.56 {
		t.Fatalf("expected 55.56, got %v", snap["rsi_14"])
	}
	if snap["current_price"] != 123.46 {
		t.Fatalf("expected 123.46, got %v", snap["current_price"])
	}
}

func TestBuildSummaryNeutralNoPatterns(t *testing.T) {
	got := buildSummary(models.DirectionNeutral, 42.5, nil, map[string]float64{"rsi_14": 50})
	want := "Current market: range-bound (strength 42.5%)."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
