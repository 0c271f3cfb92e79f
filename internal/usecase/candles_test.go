package usecase

import (
	"context"
	"testing"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
)

type fakeCandleStore struct {
	candles []models.Candle
	gotN    int
}

func (f *fakeCandleStore) GetCandles(_ context.Context, _ string, _, _ time.Time, _ drepo.Timeframe) ([]models.Candle, error) {
	return f.candles, nil
}

func (f *fakeCandleStore) GetLatestNCandles(_ context.Context, _ string, n int, _ drepo.Timeframe) ([]models.Candle, error) {
	f.gotN = n
	if n > len(f.candles) {
		n = len(f.candles)
	}
	return f.candles[len(f.candles)-n:], nil
}

func (f *fakeCandleStore) StoreBatch(_ context.Context, _ []models.Candle, _ drepo.Timeframe) error {
	return nil
}

func TestGetCandlesRequiresSymbol(t *testing.T) {
	uc := NewCandlesUseCase(&fakeCandleStore{})
	_, err := uc.GetCandles(context.Background(), GetCandlesParams{
		Symbol: "",
		From:   time.Now().Add(-time.Hour),
		To:     time.Now(),
	})
	if err == nil {
		t.Fatal("expected error for empty symbol")
	}
}

func TestGetCandlesRejectsInvertedRange(t *testing.T) {
	uc := NewCandlesUseCase(&fakeCandleStore{})
	now := time.Now()
	_, err := uc.GetCandles(context.Background(), GetCandlesParams{
		Symbol: "BTCUSDT",
		From:   now,
		To:     now.Add(-time.Hour),
	})
	if err == nil {
		t.Fatal("expected error for from > to")
	}
}

func TestGetCandlesAppliesLimit(t *testing.T) {
	store := &fakeCandleStore{candles: dailyCandles(20)}
	uc := NewCandlesUseCase(store)
	res, err := uc.GetCandles(context.Background(), GetCandlesParams{
		Symbol:    "BTCUSDT",
		From:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Timeframe: drepo.TF1d,
		Limit:     5,
	})
	if err != nil {
		t.Fatalf("get candles: %v", err)
	}
	if res.Count != 5 || len(res.Candles) != 5 {
		t.Fatalf("expected 5 candles, got count=%d len=%d", res.Count, len(res.Candles))
	}
}

func TestGetLatestDefaultsAndClamps(t *testing.T) {
	store := &fakeCandleStore{candles: dailyCandles(10)}
	uc := NewCandlesUseCase(store)

	if _, err := uc.GetLatest(context.Background(), "BTCUSDT", 0, drepo.TF1d); err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if store.gotN != 365 {
		t.Fatalf("expected default 365, got %d", store.gotN)
	}

	if _, err := uc.GetLatest(context.Background(), "BTCUSDT", 9999, drepo.TF1d); err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if store.gotN != 2000 {
		t.Fatalf("expected clamp to 2000, got %d", store.gotN)
	}
}

func TestGetLatestRangeFromCandles(t *testing.T) {
	store := &fakeCandleStore{candles: dailyCandles(10)}
	uc := NewCandlesUseCase(store)

	res, err := uc.GetLatest(context.Background(), "BTCUSDT", 10, drepo.TF1d)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if res.Count != 10 {
		t.Fatalf("count %d", res.Count)
	}
	if !res.From.Equal(res.Candles[0].Timestamp) || !res.To.Equal(res.Candles[9].Timestamp) {
		t.Fatalf("range [%s, %s] does not match candle window", res.From, res.To)
	}
}
