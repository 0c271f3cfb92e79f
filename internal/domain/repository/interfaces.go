package repository

import (
	"context"
	"time"

	"CoinPulse/internal/domain/models"
)

// TickStream is a live trade stream from the exchange.
type TickStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// CandleSource fetches historical candles from an exchange or data API.
type CandleSource interface {
	GetKlines(ctx context.Context, symbol string, tf Timeframe, limit int) ([]models.Candle, error)
}

// CandleStore provides read/write access to the persisted candle series.
type CandleStore interface {
	GetCandles(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
	StoreBatch(ctx context.Context, candles []models.Candle, tf Timeframe) error
}

// TickPublisher ships live ticks to the streaming backend.
type TickPublisher interface {
	Publish(ctx context.Context, t *models.Tick) error
	PublishBatch(ctx context.Context, ticks []*models.Tick) error
	Close() error
}

// PredictionPublisher ships completed prediction sets to downstream
// consumers.
type PredictionPublisher interface {
	PublishPredictions(ctx context.Context, set *models.PredictionSet) error
	Close() error
}

// TickStorage persists raw ticks.
type TickStorage interface {
	Store(ctx context.Context, t *models.Tick) error
	StoreBatch(ctx context.Context, ticks []*models.Tick) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Tick, error)
	Health(ctx context.Context) error
	Close() error
}

// CommentaryStore is the vector-similarity store of past analyst
// commentary.
type CommentaryStore interface {
	Add(ctx context.Context, c models.Commentary) error
	SearchSimilar(ctx context.Context, query string, k int) ([]models.ScoredCommentary, error)
}

// Metrics records operational metrics.
type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordAnalysisRun(symbol, trend string)
	RecordCandidates(accepted, discarded int)
}
