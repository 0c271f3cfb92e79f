package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	pkgch "CoinPulse/pkg/clickhouse"
	pkgkafka "CoinPulse/pkg/kafka"
)

const tickSource = "bybit"

// CHTickStorage persists raw trade ticks to ClickHouse.
type CHTickStorage struct {
	db    *sql.DB
	table string
}

func NewCHTickStorage(ch *pkgch.Client) *CHTickStorage {
	return &CHTickStorage{db: ch.DB(), table: "coinpulse.ticks"}
}

func (s *CHTickStorage) Store(ctx context.Context, t *models.Tick) error {
	if t == nil {
		return nil
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (ts, symbol, price, volume, source, event_id) VALUES (?, ?, ?, ?, ?, ?)",
		s.table,
	)
	_, err := s.db.ExecContext(ctx, q,
		time.Unix(t.Timestamp, 0).UTC(), t.Symbol, t.Price, t.Volume, tickSource, eventID(t))
	if err != nil {
		return fmt.Errorf("store tick: %w", err)
	}
	return nil
}

func (s *CHTickStorage) StoreBatch(ctx context.Context, ticks []*models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}

	const chunkSize = 2000
	for start := 0; start < len(ticks); start += chunkSize {
		end := start + chunkSize
		if end > len(ticks) {
			end = len(ticks)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, t := range ticks[start:end] {
			if t == nil || t.Symbol == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(t.Timestamp, 0).UTC(), t.Symbol, t.Price, t.Volume, tickSource, eventID(t))
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, source, event_id) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store tick batch: %w", err)
		}
	}
	return nil
}

func (s *CHTickStorage) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Tick, error) {
	q := fmt.Sprintf(`
        SELECT ts, symbol, price, volume
        FROM %s
        WHERE symbol = ? AND ts >= ? AND ts <= ?
        ORDER BY ts DESC
        LIMIT ?
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query ticks: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Tick, 0, limit)
	for rows.Next() {
		var (
			ts time.Time
			t  models.Tick
		)
		if err := rows.Scan(&ts, &t.Symbol, &t.Price, &t.Volume); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		t.Timestamp = ts.Unix()
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHTickStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHTickStorage) Close() error {
	return s.db.Close()
}

// eventID dedupes replays of the same print across reconnects.
func eventID(t *models.Tick) string {
	return fmt.Sprintf("%s-%d", t.Symbol, t.Timestamp)
}

// KafkaTickPublisher ships live ticks to the tick topic keyed by symbol.
type KafkaTickPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaTickPublisher(producer *pkgkafka.Producer, topic string) *KafkaTickPublisher {
	return &KafkaTickPublisher{producer: producer, topic: topic}
}

func (p *KafkaTickPublisher) Publish(ctx context.Context, t *models.Tick) error {
	if t == nil {
		return nil
	}
	value := map[string]interface{}{
		"symbol": t.Symbol,
		"t":      t.Timestamp,
		"p":      t.Price,
		"v":      t.Volume,
	}
	return p.producer.Publish(ctx, p.topic, []byte(t.Symbol), value)
}

func (p *KafkaTickPublisher) PublishBatch(ctx context.Context, ticks []*models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(ticks))
	for _, t := range ticks {
		if t == nil {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{
			Key: []byte(t.Symbol),
			Value: map[string]interface{}{
				"symbol": t.Symbol,
				"t":      t.Timestamp,
				"p":      t.Price,
				"v":      t.Volume,
			},
		})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaTickPublisher) Close() error {
	return p.producer.Close()
}

// KafkaPredictionPublisher ships ranked prediction sets to the prediction
// topic keyed by symbol.
type KafkaPredictionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPredictionPublisher(producer *pkgkafka.Producer, topic string) *KafkaPredictionPublisher {
	return &KafkaPredictionPublisher{producer: producer, topic: topic}
}

func (p *KafkaPredictionPublisher) PublishPredictions(ctx context.Context, set *models.PredictionSet) error {
	if set == nil {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, []byte(set.Symbol), set)
}

func (p *KafkaPredictionPublisher) Close() error {
	return p.producer.Close()
}
