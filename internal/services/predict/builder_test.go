package predict

import (
	"strings"
	"testing"

	"CoinPulse/internal/domain/models"
)

func fixtureAnalysis() models.AnalysisResult {
	return models.AnalysisResult{
		Symbol:   "BTCUSDT",
		Trend:    models.DirectionBullish,
		Strength: 72.5,
		Summary:  "Current market: uptrend (strength 72.5%).",
		Indicators: map[string]float64{
			"rsi_14":        61.2,
			"current_price": 98000,
		},
		SupportResistance: models.SupportResistance{
			Pivot:      97000,
			Resistance: []float64{102000, 100000},
			Support:    []float64{94000, 95000},
		},
		Patterns: []models.DetectedPattern{
			{Name: "Ascending Triangle", Description: "Ascending triangle forming; potential break higher."},
		},
	}
}

func TestBuildRequestDefaults(t *testing.T) {
	req := BuildRequest(fixtureAnalysis(), 98000, nil, 0, "")
	if req.Count != DefaultCandidateCount {
		t.Fatalf("expected default count %d, got %d", DefaultCandidateCount, req.Count)
	}
	if len(req.Horizons) != len(DefaultHorizons) {
		t.Fatalf("expected default horizons, got %v", req.Horizons)
	}
	if req.CurrentPrice != 98000 {
		t.Fatalf("expected current price in request, got %v", req.CurrentPrice)
	}
	if req.System == "" {
		t.Fatalf("expected system prompt")
	}
}

func TestBuildRequestPromptContents(t *testing.T) {
	req := BuildRequest(fixtureAnalysis(), 98000, []string{"1week"}, 5, "ETF inflows continue")

	for _, want := range []string{
		"$98000.00",
		"uptrend",
		"rsi_14",
		"Ascending Triangle",
		"ETF inflows continue",
		"exactly 5 distinct price scenarios",
		"1week",
		"take_profit",
	} {
		if !strings.Contains(req.Prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestBuildRequestOmitsEmptySections(t *testing.T) {
	a := fixtureAnalysis()
	a.Patterns = nil
	req := BuildRequest(a, 98000, []string{"1week"}, 5, "")
	if strings.Contains(req.Prompt, "Detected chart patterns") {
		t.Fatalf("expected pattern section omitted")
	}
	if strings.Contains(req.Prompt, "Fundamentals and news context") {
		t.Fatalf("expected context section omitted")
	}
}
