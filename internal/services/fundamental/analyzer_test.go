package fundamental

import (
	"strings"
	"testing"

	"CoinPulse/internal/domain/models"
)

func TestAnalyzeEmptyNewsIsNeutral(t *testing.T) {
	a := NewAnalyzer()
	res := a.Analyze(nil)
	if res.Sentiment != 0 {
		t.Fatalf("expected neutral sentiment, got %v", res.Sentiment)
	}
	if len(res.KeyEvents) != 0 || len(res.SimilarEvents) != 0 {
		t.Fatalf("expected no events, got %+v", res)
	}
	if !strings.Contains(res.AnalysisSummary, "neutral") {
		t.Fatalf("summary %q", res.AnalysisSummary)
	}
}

func TestAnalyzeClassifiesCategories(t *testing.T) {
	a := NewAnalyzer()
	res := a.Analyze([]models.CryptoNews{
		{Title: "Bitcoin Halving countdown begins", Source: "feed"},
		{Title: "SEC delays spot ETF decision", Source: "feed"},
		{Title: "New mining ban proposed", Source: "feed"},
		{Title: "Fed signals rate cut", Source: "feed"},
		{Title: "Exchange lists new token", Source: "feed"},
	})

	want := []string{"halving", "etf", "regulation", "macro", "other"}
	if len(res.KeyEvents) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(res.KeyEvents))
	}
	for i, w := range want {
		if res.KeyEvents[i].Category != w {
			t.Fatalf("event %d: expected category %q, got %q", i, w, res.KeyEvents[i].Category)
		}
	}
}

func TestAnalyzeMatchesHistoricalPrecedents(t *testing.T) {
	a := NewAnalyzer()
	res := a.Analyze([]models.CryptoNews{
		{Title: "Halving supply shock incoming"},
	})
	if len(res.SimilarEvents) != 2 {
		t.Fatalf("expected both halving precedents, got %d", len(res.SimilarEvents))
	}
	for _, h := range res.SimilarEvents {
		if h.Category != "halving" {
			t.Fatalf("unexpected precedent category %q", h.Category)
		}
	}
}

func TestAnalyzeSentimentFromCategories(t *testing.T) {
	a := NewAnalyzer()
	res := a.Analyze([]models.CryptoNews{
		{Title: "Markets rally", Categories: "BTC|Bullish"},
		{Title: "Markets rally again", Categories: "bullish"},
	})
	if res.Sentiment != 0.3 {
		t.Fatalf("expected sentiment 0.3, got %v", res.Sentiment)
	}
	if !strings.Contains(res.AnalysisSummary, "optimistic") {
		t.Fatalf("summary %q", res.AnalysisSummary)
	}
}

func TestSentimentFromFearGreed(t *testing.T) {
	cases := []struct {
		value int
		want  float64
	}{
		{0, -1},
		{25, -0.5},
		{50, 0},
		{75, 0.5},
		{100, 1},
	}
	for _, c := range cases {
		if got := SentimentFromFearGreed(c.value); got != c.want {
			t.Fatalf("value %d: expected %v, got %v", c.value, c.want, got)
		}
	}
}
