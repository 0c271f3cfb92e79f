package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	domsvc "CoinPulse/internal/domain/service"
	icache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/services/indicators"
	"CoinPulse/internal/services/marketdata"
	"CoinPulse/internal/services/notify"
	"CoinPulse/internal/services/predict"
	"CoinPulse/internal/services/report"
	"CoinPulse/internal/services/technical"
	"CoinPulse/pkg/config"
	applogger "CoinPulse/pkg/logger"
)

const (
	analysisCacheKeyPrefix   = "analysis:latest:"
	predictionCacheKeyPrefix = "predictions:latest:"
)

// ErrRunInProgress is returned when an analysis run is requested while a
// previous one is still executing.
var ErrRunInProgress = fmt.Errorf("analysis run already in progress")

// AnalysisUseCase orchestrates one full analysis run: market data in,
// technical analysis, prediction generation, validation, and fan-out of the
// ranked result.
type AnalysisUseCase struct {
	cfg        *config.Config
	gecko      *marketdata.CoinGeckoClient
	fearGreed  *marketdata.FearGreedClient
	source     drepo.CandleSource
	store      drepo.CandleStore
	ticks      drepo.TickStorage
	enricher   *indicators.Enricher
	analyzer   *technical.Analyzer
	generator  domsvc.Generator
	validator  *predict.Validator
	ctxBuilder *ContextBuilder
	commentary drepo.CommentaryStore
	publisher  drepo.PredictionPublisher
	webhook    *notify.WebhookNotifier
	uploader   *report.Uploader
	cache      icache.BytesCache
	metrics    drepo.Metrics
	l          *applogger.Logger

	mu sync.Mutex
}

func NewAnalysisUseCase(
	cfg *config.Config,
	gecko *marketdata.CoinGeckoClient,
	fearGreed *marketdata.FearGreedClient,
	source drepo.CandleSource,
	store drepo.CandleStore,
	ticks drepo.TickStorage,
	enricher *indicators.Enricher,
	analyzer *technical.Analyzer,
	generator domsvc.Generator,
	validator *predict.Validator,
	ctxBuilder *ContextBuilder,
	commentary drepo.CommentaryStore,
	publisher drepo.PredictionPublisher,
	webhook *notify.WebhookNotifier,
	uploader *report.Uploader,
	cache icache.BytesCache,
	metrics drepo.Metrics,
	l *applogger.Logger,
) *AnalysisUseCase {
	return &AnalysisUseCase{
		cfg:        cfg,
		gecko:      gecko,
		fearGreed:  fearGreed,
		source:     source,
		store:      store,
		ticks:      ticks,
		enricher:   enricher,
		analyzer:   analyzer,
		generator:  generator,
		validator:  validator,
		ctxBuilder: ctxBuilder,
		commentary: commentary,
		publisher:  publisher,
		webhook:    webhook,
		uploader:   uploader,
		cache:      cache,
		metrics:    metrics,
		l:          l,
	}
}

// Run executes one full analysis pass for the configured symbol. Only one
// run executes at a time; a second caller gets ErrRunInProgress instead of
// queueing behind the first.
func (uc *AnalysisUseCase) Run(ctx context.Context) error {
	if !uc.mu.TryLock() {
		return ErrRunInProgress
	}
	defer uc.mu.Unlock()

	start := time.Now()
	symbol := uc.cfg.Analysis.Symbol

	snap, price, err := uc.currentPrice(ctx, symbol)
	if err != nil {
		uc.metrics.RecordError("analysis_price")
		return fmt.Errorf("current price: %w", err)
	}

	window, err := uc.candleWindow(ctx, symbol)
	if err != nil {
		uc.metrics.RecordError("analysis_candles")
		return fmt.Errorf("candle window: %w", err)
	}
	window = uc.enricher.Enrich(window)

	analysis, err := uc.analyzer.Analyze(window)
	if err != nil {
		uc.metrics.RecordError("analysis_core")
		return fmt.Errorf("analyze: %w", err)
	}
	analysis.Symbol = symbol

	var fg *models.FearGreed
	if uc.fearGreed != nil {
		if cur, fgErr := uc.fearGreed.GetCurrent(ctx); fgErr != nil {
			uc.l.Warn("fear & greed unavailable", applogger.Error(fgErr))
		} else {
			fg = cur
		}
	}

	contextText := uc.ctxBuilder.Build(ctx, symbol, snap, analysis, fg)

	req := predict.BuildRequest(analysis, price,
		uc.cfg.Analysis.Horizons, uc.cfg.Analysis.PredictionCount, contextText)

	raw, err := uc.generator.GenerateCandidates(ctx, req)
	if err != nil {
		uc.metrics.RecordError("analysis_generate")
		return fmt.Errorf("generate candidates: %w", err)
	}

	patterns := uc.validator.ValidateAndRank(raw, price)
	uc.metrics.RecordCandidates(len(patterns), len(raw)-len(patterns))
	uc.metrics.RecordAnalysisRun(symbol, string(analysis.Trend))

	set := &models.PredictionSet{
		Symbol:       symbol,
		CurrentPrice: price,
		Patterns:     patterns,
		Summary:      analysis.Summary,
		CreatedAt:    time.Now().UTC(),
	}

	uc.cacheResult(analysisCacheKeyPrefix+symbol, analysis, uc.cfg.Cache.AnalysisTTL)
	uc.cacheResult(predictionCacheKeyPrefix+symbol, set, uc.cfg.Cache.PredictionTTL)
	uc.fanOut(ctx, set, snap, analysis, fg)

	uc.metrics.RecordLatency("analysis_run", time.Since(start).Seconds())
	uc.l.Info("analysis run complete",
		applogger.String("symbol", symbol),
		applogger.String("trend", string(analysis.Trend)),
		applogger.Int("candidates", len(raw)),
		applogger.Int("ranked", len(patterns)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

// currentPrice resolves the spot price, preferring the market-data provider
// and falling back to the most recent stored tick.
func (uc *AnalysisUseCase) currentPrice(ctx context.Context, symbol string) (*models.MarketSnapshot, float64, error) {
	if uc.gecko != nil {
		snap, err := uc.gecko.GetSnapshot(ctx, symbol)
		if err == nil && snap.PriceUSD > 0 {
			return snap, snap.PriceUSD, nil
		}
		if err != nil {
			uc.l.Warn("market snapshot unavailable, trying last tick", applogger.Error(err))
		}
	}
	if uc.ticks != nil {
		now := time.Now()
		ticks, err := uc.ticks.Query(ctx, symbol, now.Add(-time.Hour), now, 1)
		if err == nil && len(ticks) > 0 && ticks[0].Price > 0 {
			return nil, ticks[0].Price, nil
		}
	}
	return nil, 0, fmt.Errorf("no price source available for %s", symbol)
}

// candleWindow fetches the daily analysis window from the exchange, falling
// back to the persisted series. Fresh exchange candles are stored
// best-effort.
func (uc *AnalysisUseCase) candleWindow(ctx context.Context, symbol string) ([]models.Candle, error) {
	limit := uc.cfg.Analysis.CandleLimit
	if limit <= 0 {
		limit = 365
	}

	candles, err := uc.source.GetKlines(ctx, symbol, drepo.TF1d, limit)
	if err == nil && len(candles) > 0 {
		if uc.store != nil {
			if storeErr := uc.store.StoreBatch(ctx, candles, drepo.TF1d); storeErr != nil {
				uc.l.Warn("candle store write failed", applogger.Error(storeErr))
			}
		}
		return candles, nil
	}
	if err != nil {
		uc.l.Warn("exchange candles unavailable, using stored series", applogger.Error(err))
	}
	if uc.store == nil {
		return nil, fmt.Errorf("no candle source available for %s", symbol)
	}
	stored, storeErr := uc.store.GetLatestNCandles(ctx, symbol, limit, drepo.TF1d)
	if storeErr != nil {
		return nil, fmt.Errorf("stored candles: %w", storeErr)
	}
	if len(stored) == 0 {
		return nil, fmt.Errorf("no candles available for %s", symbol)
	}
	return stored, nil
}

// fanOut delivers the completed set to every configured sink. All sinks are
// best-effort; a failed sink is logged and skipped.
func (uc *AnalysisUseCase) fanOut(ctx context.Context, set *models.PredictionSet, snap *models.MarketSnapshot, analysis models.AnalysisResult, fg *models.FearGreed) {
	if uc.publisher != nil {
		if err := uc.publisher.PublishPredictions(ctx, set); err != nil {
			uc.metrics.RecordError("publish_predictions")
			uc.l.Warn("prediction publish failed", applogger.Error(err))
		} else {
			uc.metrics.RecordMessageSent("kafka", set.Symbol)
		}
	}
	if uc.webhook != nil && uc.webhook.IsConfigured() {
		if err := uc.webhook.SendPredictions(ctx, set); err != nil {
			uc.metrics.RecordError("webhook_send")
			uc.l.Warn("webhook send failed", applogger.Error(err))
		}
	}
	if uc.uploader != nil && uc.uploader.IsConfigured() {
		if err := uc.uploader.UploadJSON(ctx, set, report.DefaultReportName); err != nil {
			uc.metrics.RecordError("report_upload")
			uc.l.Warn("report upload failed", applogger.Error(err))
		}
	}
	if uc.commentary != nil {
		change7d := 0.0
		if snap != nil {
			change7d = snap.Change7dPct
		}
		fgValue := 50
		if fg != nil {
			fgValue = fg.Value
		}
		c := models.Commentary{
			ID:        fmt.Sprintf("%s-%d", set.Symbol, set.CreatedAt.Unix()),
			Text:      analysis.Summary,
			Trend:     analysis.Trend,
			ChangePct: change7d,
			FearGreed: fgValue,
			CreatedAt: set.CreatedAt,
		}
		if err := uc.commentary.Add(ctx, c); err != nil {
			uc.l.Warn("commentary store failed", applogger.Error(err))
		}
	}
}

func (uc *AnalysisUseCase) cacheResult(key string, v interface{}, ttl time.Duration) {
	if uc.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		uc.l.Error("cache marshal failed", applogger.String("key", key), applogger.Error(err))
		return
	}
	if err := uc.cache.SetBytes(key, b, ttl); err != nil {
		uc.l.Warn("cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}

// LatestAnalysis returns the most recent cached analysis for the symbol.
func (uc *AnalysisUseCase) LatestAnalysis(symbol string) (*models.AnalysisResult, bool, error) {
	var out models.AnalysisResult
	ok, err := uc.fromCache(analysisCacheKeyPrefix+symbol, &out)
	return &out, ok, err
}

// LatestPredictions returns the most recent cached prediction set. When
// top > 0, only the top-ranked entries are returned.
func (uc *AnalysisUseCase) LatestPredictions(symbol string, top int) (*models.PredictionSet, bool, error) {
	var out models.PredictionSet
	ok, err := uc.fromCache(predictionCacheKeyPrefix+symbol, &out)
	if err != nil || !ok {
		return nil, ok, err
	}
	if top > 0 && len(out.Patterns) > top {
		out.Patterns = out.Patterns[:top]
	}
	return &out, true, nil
}

func (uc *AnalysisUseCase) fromCache(key string, dest interface{}) (bool, error) {
	if uc.cache == nil {
		return false, nil
	}
	b, ok, err := uc.cache.GetBytes(key)
	if err != nil {
		return false, fmt.Errorf("cache read: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("cache decode: %w", err)
	}
	return true, nil
}
