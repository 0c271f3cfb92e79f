package api

import (
	"encoding/json"
	"time"

	models "CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	icache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/service/metrics"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/internal/usecase"
	xhttp "CoinPulse/pkg/http"
	xlogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/queue"
	"CoinPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// AnalysisEchoHandler implements the Echo-based HTTP API over the analysis
// pipeline.
type AnalysisEchoHandler struct {
	logger    *xlogger.Logger
	uc        *usecase.AnalysisUseCase
	candles   *usecase.CandlesUseCase
	q         queue.QueueService
	collector *usecase.TickCollector
	cache     icache.BytesCache
	rl        *ratelimit.Limiter
}

func NewAnalysisEchoHandler(
	logger *xlogger.Logger,
	uc *usecase.AnalysisUseCase,
	candles *usecase.CandlesUseCase,
	q queue.QueueService,
	collector *usecase.TickCollector,
) *AnalysisEchoHandler {
	metrics.Register()
	return &AnalysisEchoHandler{
		logger:  logger,
		uc:      uc,
		candles: candles,
		q:       q,

		collector: collector,
		rl:        ratelimit.New(),
	}
}

// SetCache injects the response cache for the candles endpoint.
func (h *AnalysisEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analysis", h.Analysis)
	g.GET("/predictions", h.Predictions)
	g.POST("/analyze", h.Analyze)
	g.GET("/candles", h.Candles)
	g.GET("/health", h.Health)
}

// Analysis returns the latest cached technical analysis.
func (h *AnalysisEchoHandler) Analysis(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.AnalysisLatency.WithLabelValues("analysis").Observe(time.Since(start).Seconds())
	}()

	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, ok, err := h.uc.LatestAnalysis(req.Symbol)
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues("analysis").Inc()
		h.logger.Error("analysis read error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if !ok {
		return xhttp.NotFoundResponse(c, "no analysis available yet")
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

// Predictions returns the latest ranked prediction set.
func (h *AnalysisEchoHandler) Predictions(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.AnalysisLatency.WithLabelValues("predictions").Observe(time.Since(start).Seconds())
	}()

	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, ok, err := h.uc.LatestPredictions(req.Symbol, req.Top)
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues("predictions").Inc()
		h.logger.Error("predictions read error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if !ok {
		return xhttp.NotFoundResponse(c, "no predictions available yet")
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

// Analyze enqueues a fresh analysis run.
func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":analyze", 2, 0.2) {
		h.logger.Warn("analyze rate_limited", xlogger.String("remote", c.RealIP()))
		return echo.NewHTTPError(429, "rate limited")
	}

	payload := usecase.AnalysisJobPayload{Symbol: req.Symbol, RequestedBy: "api"}
	if err := h.q.PublishMessage(c.Request().Context(), usecase.AnalysisJobType, payload); err != nil {
		metrics.AnalysisErrors.WithLabelValues("analyze").Inc()
		h.logger.Error("analyze enqueue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.DataResponse(c, 202, map[string]string{
		"status": "queued",
		"symbol": req.Symbol,
	})
}

// Candles returns the trailing candle window from storage.
func (h *AnalysisEchoHandler) Candles(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.AnalysisLatency.WithLabelValues("candles").Observe(time.Since(start).Seconds())
	}()

	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	if req.From != "" && req.To != "" {
		return h.candlesRange(c, req, tf)
	}

	cacheKey := "candles:" + req.Symbol + ":" + string(tf)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("candles cache_get_error", xlogger.Error(err))
		} else if ok {
			return xhttp.SuccessResponse(c, json.RawMessage(b))
		}
	}

	res, err := h.candles.GetLatest(c.Request().Context(), req.Symbol, req.N, tf)
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues("candles").Inc()
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if h.cache != nil {
		if b, merr := json.Marshal(res); merr == nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil {
				h.logger.Warn("candles cache_set_error", xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, res)
}

// candlesRange serves an explicit [from, to] window, aligned to candle
// boundaries. Range reads bypass the response cache.
func (h *AnalysisEchoHandler) candlesRange(c echo.Context, req *models.CandlesRequest, tf domrepo.Timeframe) error {
	from, ok := xhttp.ParseTime(req.From)
	if !ok {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("invalid from timestamp"))
	}
	to, ok := xhttp.ParseTime(req.To)
	if !ok {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("invalid to timestamp"))
	}
	from, to = util.AlignFromTo(from, to, string(tf))

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		From:      from,
		To:        to,
		Timeframe: tf,
		Limit:     req.N,
	})
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues("candles").Inc()
		h.logger.Error("candles range error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Health reports process liveness and stream connectivity.
func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	streamConnected := false
	if h.collector != nil {
		streamConnected = h.collector.IsConnected()
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":           "ok",
		"stream_connected": streamConnected,
		"time":             time.Now().UTC().Format(time.RFC3339),
	})
}
