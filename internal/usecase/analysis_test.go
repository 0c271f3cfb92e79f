package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/services/indicators"
	"CoinPulse/internal/services/predict"
	"CoinPulse/internal/services/technical"
	"CoinPulse/pkg/config"
	applogger "CoinPulse/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type fakeCandleSource struct {
	candles []models.Candle
	err     error
}

func (f *fakeCandleSource) GetKlines(_ context.Context, _ string, _ drepo.Timeframe, _ int) ([]models.Candle, error) {
	return f.candles, f.err
}

type fakeTickStorage struct {
	last *models.Tick
}

func (f *fakeTickStorage) Store(context.Context, *models.Tick) error        { return nil }
func (f *fakeTickStorage) StoreBatch(context.Context, []*models.Tick) error { return nil }
func (f *fakeTickStorage) Query(context.Context, string, time.Time, time.Time, int) ([]*models.Tick, error) {
	if f.last == nil {
		return nil, nil
	}
	return []*models.Tick{f.last}, nil
}
func (f *fakeTickStorage) Health(context.Context) error { return nil }
func (f *fakeTickStorage) Close() error                 { return nil }

type fakeGenerator struct {
	raw []json.RawMessage
	err error
	req models.PredictionRequest
}

func (f *fakeGenerator) GenerateCandidates(_ context.Context, req models.PredictionRequest) ([]json.RawMessage, error) {
	f.req = req
	return f.raw, f.err
}

type fakePublisher struct {
	sets []*models.PredictionSet
}

func (f *fakePublisher) PublishPredictions(_ context.Context, set *models.PredictionSet) error {
	f.sets = append(f.sets, set)
	return nil
}
func (f *fakePublisher) Close() error { return nil }

type mapCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{m: make(map[string][]byte)} }

func (c *mapCache) GetBytes(key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	return b, ok, nil
}

func (c *mapCache) SetBytes(key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return nil
}

type countingMetrics struct {
	runs      int
	accepted  int
	discarded int
	errors    []string
}

func (m *countingMetrics) RecordMessageSent(string, string) {}
func (m *countingMetrics) RecordError(kind string)          { m.errors = append(m.errors, kind) }
func (m *countingMetrics) RecordLastPrice(string, float64)  {}
func (m *countingMetrics) RecordLatency(string, float64)    {}
func (m *countingMetrics) RecordAnalysisRun(string, string) { m.runs++ }
func (m *countingMetrics) RecordCandidates(accepted, discarded int) {
	m.accepted += accepted
	m.discarded += discarded
}

func dailyCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		price := 90000 + 50*float64(i)
		out[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Symbol:    "BTCUSDT",
			Open:      price,
			High:      price * 1.01,
			Low:       price * 0.99,
			Close:     price,
			Volume:    1000,
		}
	}
	return out
}

func candidate(prob float64, target float64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
        "rank": 1,
        "probability": %f,
        "direction": "bullish",
        "target_price": %f,
        "timeframe": "1week",
        "pattern_name": "breakout",
        "reasoning": "momentum",
        "key_levels": {"entry": 98000, "stop_loss": 95000, "take_profit": [%f]}
    }`, prob, target, target))
}

func newTestUseCase(t *testing.T, gen *fakeGenerator, cache *mapCache, pub *fakePublisher, m *countingMetrics, source drepo.CandleSource, ticks drepo.TickStorage) *AnalysisUseCase {
	t.Helper()
	l := testLogger(t)
	cfg := &config.Config{}
	cfg.Analysis.Symbol = "BTCUSDT"
	cfg.Analysis.CandleLimit = 90
	cfg.Analysis.PredictionCount = 5
	cfg.Analysis.Horizons = []string{"1week"}
	cfg.Cache.AnalysisTTL = time.Hour
	cfg.Cache.PredictionTTL = time.Hour

	ctxBuilder := NewContextBuilder(nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, cfg, l)

	return NewAnalysisUseCase(
		cfg,
		nil, // market snapshot provider: last-tick fallback is exercised
		nil,
		source,
		nil,
		ticks,
		indicators.NewEnricher(l),
		technical.NewAnalyzer(l),
		gen,
		predict.NewValidator(l),
		ctxBuilder,
		nil,
		pub,
		nil,
		nil,
		cache,
		m,
		l,
	)
}

func TestRunProducesRankedPredictions(t *testing.T) {
	gen := &fakeGenerator{raw: []json.RawMessage{
		candidate(0.3, 101000),
		candidate(0.6, 105000),
		json.RawMessage(`not json`),
	}}
	cache := newMapCache()
	pub := &fakePublisher{}
	m := &countingMetrics{}
	source := &fakeCandleSource{candles: dailyCandles(90)}
	ticks := &fakeTickStorage{last: &models.Tick{Symbol: "BTCUSDT", Timestamp: time.Now().Unix(), Price: 98000, Volume: 1}}

	uc := newTestUseCase(t, gen, cache, pub, m, source, ticks)

	if err := uc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	set, ok, err := uc.LatestPredictions("BTCUSDT", 0)
	if err != nil || !ok {
		t.Fatalf("latest predictions: ok=%v err=%v", ok, err)
	}
	if len(set.Patterns) != 2 {
		t.Fatalf("expected 2 surviving patterns, got %d", len(set.Patterns))
	}
	if set.Patterns[0].Probability != 0.6 || set.Patterns[0].Rank != 1 {
		t.Fatalf("expected highest probability ranked first, got %+v", set.Patterns[0])
	}
	if set.CurrentPrice != 98000 {
		t.Fatalf("expected last-tick price 98000, got %v", set.CurrentPrice)
	}

	analysis, ok, err := uc.LatestAnalysis("BTCUSDT")
	if err != nil || !ok {
		t.Fatalf("latest analysis: ok=%v err=%v", ok, err)
	}
	if analysis.Symbol != "BTCUSDT" {
		t.Fatalf("analysis symbol %q", analysis.Symbol)
	}
	if analysis.Trend != models.DirectionBullish {
		t.Fatalf("steadily rising series should classify bullish, got %s", analysis.Trend)
	}

	if len(pub.sets) != 1 {
		t.Fatalf("expected 1 published set, got %d", len(pub.sets))
	}
	if m.runs != 1 || m.accepted != 2 || m.discarded != 1 {
		t.Fatalf("metrics runs=%d accepted=%d discarded=%d", m.runs, m.accepted, m.discarded)
	}
}

func TestRunFailsWithoutPriceSource(t *testing.T) {
	gen := &fakeGenerator{}
	uc := newTestUseCase(t, gen, newMapCache(), &fakePublisher{}, &countingMetrics{},
		&fakeCandleSource{candles: dailyCandles(30)}, &fakeTickStorage{})

	if err := uc.Run(context.Background()); err == nil {
		t.Fatal("expected error when no price source is available")
	}
}

func TestRunFailsWithoutCandles(t *testing.T) {
	gen := &fakeGenerator{}
	ticks := &fakeTickStorage{last: &models.Tick{Symbol: "BTCUSDT", Timestamp: time.Now().Unix(), Price: 98000}}
	uc := newTestUseCase(t, gen, newMapCache(), &fakePublisher{}, &countingMetrics{},
		&fakeCandleSource{err: fmt.Errorf("exchange down")}, ticks)

	if err := uc.Run(context.Background()); err == nil {
		t.Fatal("expected error when no candle source is available")
	}
}

func TestRunZeroSurvivorsIsNotAnError(t *testing.T) {
	gen := &fakeGenerator{raw: []json.RawMessage{json.RawMessage(`{"probability": "abc"}`)}}
	cache := newMapCache()
	ticks := &fakeTickStorage{last: &models.Tick{Symbol: "BTCUSDT", Timestamp: time.Now().Unix(), Price: 98000}}
	uc := newTestUseCase(t, gen, cache, &fakePublisher{}, &countingMetrics{},
		&fakeCandleSource{candles: dailyCandles(60)}, ticks)

	if err := uc.Run(context.Background()); err != nil {
		t.Fatalf("zero survivors must still complete the run: %v", err)
	}
	set, ok, err := uc.LatestPredictions("BTCUSDT", 0)
	if err != nil || !ok {
		t.Fatalf("latest predictions: ok=%v err=%v", ok, err)
	}
	if len(set.Patterns) != 0 {
		t.Fatalf("expected empty pattern list, got %d", len(set.Patterns))
	}
}

func TestLatestPredictionsTopSlicing(t *testing.T) {
	gen := &fakeGenerator{raw: []json.RawMessage{
		candidate(0.5, 101000),
		candidate(0.4, 102000),
		candidate(0.3, 103000),
	}}
	cache := newMapCache()
	ticks := &fakeTickStorage{last: &models.Tick{Symbol: "BTCUSDT", Timestamp: time.Now().Unix(), Price: 98000}}
	uc := newTestUseCase(t, gen, cache, &fakePublisher{}, &countingMetrics{},
		&fakeCandleSource{candles: dailyCandles(60)}, ticks)

	if err := uc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	set, ok, err := uc.LatestPredictions("BTCUSDT", 2)
	if err != nil || !ok {
		t.Fatalf("latest predictions: ok=%v err=%v", ok, err)
	}
	if len(set.Patterns) != 2 {
		t.Fatalf("expected top 2, got %d", len(set.Patterns))
	}
}
