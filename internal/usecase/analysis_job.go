package usecase

import (
	"context"
	"errors"
	"time"

	applogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/queue"
)

// AnalysisJobType is the queue message type that triggers an analysis run.
const AnalysisJobType = "analysis.run"

// AnalysisJobPayload carries the run parameters through the queue.
type AnalysisJobPayload struct {
	Symbol      string `json:"symbol"`
	RequestedBy string `json:"requested_by"` // "scheduler" or "api"
}

// AnalysisJob executes queued analysis runs.
type AnalysisJob struct {
	uc *AnalysisUseCase
	l  *applogger.Logger
}

func NewAnalysisJob(uc *AnalysisUseCase, l *applogger.Logger) *AnalysisJob {
	return &AnalysisJob{uc: uc, l: l}
}

func (j *AnalysisJob) Name() string { return "analysis-run" }
func (j *AnalysisJob) Type() string { return AnalysisJobType }

func (j *AnalysisJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[AnalysisJobPayload](payload)
	if err != nil {
		return err
	}
	j.l.Info("analysis job picked up",
		applogger.String("symbol", p.Symbol),
		applogger.String("requested_by", p.RequestedBy))

	if err := j.uc.Run(ctx); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			// A concurrent run already covers this request.
			j.l.Warn("analysis job skipped, run in progress")
			return nil
		}
		return err
	}
	return nil
}

var _ queue.Job = (*AnalysisJob)(nil)

// AnalysisScheduler enqueues a recurring analysis run.
type AnalysisScheduler struct {
	q        queue.QueueService
	symbol   string
	interval time.Duration
	l        *applogger.Logger
	stopCh   chan struct{}
}

func NewAnalysisScheduler(q queue.QueueService, symbol string, interval time.Duration, l *applogger.Logger) *AnalysisScheduler {
	return &AnalysisScheduler{
		q:        q,
		symbol:   symbol,
		interval: interval,
		l:        l,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the scheduling loop. The first run is enqueued
// immediately.
func (s *AnalysisScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.l.Info("analysis scheduler disabled")
		return
	}
	go func() {
		s.enqueue(ctx)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.enqueue(ctx)
			}
		}
	}()
	s.l.Info("analysis scheduler started",
		applogger.String("symbol", s.symbol),
		applogger.Duration("interval", s.interval))
}

func (s *AnalysisScheduler) Stop() { close(s.stopCh) }

func (s *AnalysisScheduler) enqueue(ctx context.Context) {
	payload := AnalysisJobPayload{Symbol: s.symbol, RequestedBy: "scheduler"}
	if err := s.q.PublishMessage(ctx, AnalysisJobType, payload); err != nil {
		s.l.Error("enqueue analysis run failed", applogger.Error(err))
	}
}
