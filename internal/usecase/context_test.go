package usecase

import (
	"context"
	"strings"
	"testing"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/services/fundamental"
	"CoinPulse/pkg/config"
)

func newFundamentalOnlyBuilder(t *testing.T) *ContextBuilder {
	t.Helper()
	return NewContextBuilder(nil, nil, nil, nil, nil, nil, nil,
		fundamental.NewAnalyzer(), nil, nil, &config.Config{}, testLogger(t))
}

func TestBuildFundamentalBlockFromFearGreed(t *testing.T) {
	b := newFundamentalOnlyBuilder(t)
	fg := &models.FearGreed{Value: 80, Classification: "Greed"}

	got := b.Build(context.Background(), "BTCUSDT", nil, models.AnalysisResult{}, fg)
	if !strings.Contains(got, "Fundamental analysis:") {
		t.Fatalf("expected fundamental block, got %q", got)
	}
	// 80 on the 0-100 index maps to +0.60 on the [-1, 1] scale.
	if !strings.Contains(got, "Sentiment score: +0.60") {
		t.Fatalf("expected fear-greed sentiment override, got %q", got)
	}
	if !strings.Contains(got, "Fear & Greed index: 80 (Greed)") {
		t.Fatalf("expected sentiment block, got %q", got)
	}
}

func TestBuildFundamentalBlockSkippedWithoutInputs(t *testing.T) {
	b := newFundamentalOnlyBuilder(t)

	got := b.Build(context.Background(), "BTCUSDT", nil, models.AnalysisResult{}, nil)
	if got != "" {
		t.Fatalf("expected empty context with no providers and no index, got %q", got)
	}
}

func TestBuildJoinsBlocksWithSeparator(t *testing.T) {
	b := newFundamentalOnlyBuilder(t)
	fg := &models.FearGreed{Value: 10, Classification: "Extreme Fear"}

	got := b.Build(context.Background(), "BTCUSDT", nil, models.AnalysisResult{}, fg)
	parts := strings.Split(got, contextBlockSeparator)
	if len(parts) != 2 {
		t.Fatalf("expected sentiment + fundamental blocks, got %d: %q", len(parts), got)
	}
	if !strings.Contains(parts[1], "Sentiment score: -0.80") {
		t.Fatalf("expected mapped extreme-fear score, got %q", parts[1])
	}
}
