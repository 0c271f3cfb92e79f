package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"CoinPulse/internal/domain/models"
)

type recordingTickStorage struct {
	fakeTickStorage
	stored []*models.Tick
	err    error
}

func (r *recordingTickStorage) Store(_ context.Context, t *models.Tick) error {
	if r.err != nil {
		return r.err
	}
	r.stored = append(r.stored, t)
	return nil
}

func TestKafkaTicksHandlerStoresTick(t *testing.T) {
	storage := &recordingTickStorage{}
	m := &countingMetrics{}
	h := NewKafkaTicksHandler("coinpulse.ticks", storage, m)

	if h.Topic() != "coinpulse.ticks" {
		t.Fatalf("topic %q", h.Topic())
	}

	now := time.Now().Unix()
	msg := fmt.Sprintf(`{"symbol":"BTCUSDT","t":%d,"p":98123.5,"v":0.42}`, now)
	if err := h.Handle(context.Background(), []byte(msg)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(storage.stored) != 1 {
		t.Fatalf("expected 1 stored tick, got %d", len(storage.stored))
	}
	tick := storage.stored[0]
	if tick.Symbol != "BTCUSDT" || tick.Timestamp != now || tick.Price != 98123.5 || tick.Volume != 0.42 {
		t.Fatalf("stored tick %+v", tick)
	}
}

func TestKafkaTicksHandlerNormalizesMilliseconds(t *testing.T) {
	storage := &recordingTickStorage{}
	h := NewKafkaTicksHandler("coinpulse.ticks", storage, &countingMetrics{})

	sec := time.Now().Unix()
	msg := fmt.Sprintf(`{"symbol":"BTCUSDT","t":%d,"p":98000,"v":1}`, sec*1000)
	if err := h.Handle(context.Background(), []byte(msg)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if storage.stored[0].Timestamp != sec {
		t.Fatalf("expected seconds %d, got %d", sec, storage.stored[0].Timestamp)
	}
}

func TestKafkaTicksHandlerRejectsMalformedJSON(t *testing.T) {
	storage := &recordingTickStorage{}
	m := &countingMetrics{}
	h := NewKafkaTicksHandler("coinpulse.ticks", storage, m)

	if err := h.Handle(context.Background(), []byte(`{broken`)); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if len(storage.stored) != 0 {
		t.Fatalf("nothing should be stored, got %d", len(storage.stored))
	}
	if len(m.errors) != 1 || m.errors[0] != "consumer_unmarshal" {
		t.Fatalf("errors %v", m.errors)
	}
}

func TestKafkaTicksHandlerPropagatesStoreError(t *testing.T) {
	storage := &recordingTickStorage{err: fmt.Errorf("clickhouse down")}
	m := &countingMetrics{}
	h := NewKafkaTicksHandler("coinpulse.ticks", storage, m)

	msg := fmt.Sprintf(`{"symbol":"BTCUSDT","t":%d,"p":98000,"v":1}`, time.Now().Unix())
	if err := h.Handle(context.Background(), []byte(msg)); err == nil {
		t.Fatal("expected store error to propagate")
	}
	if len(m.errors) != 1 || m.errors[0] != "consumer_store" {
		t.Fatalf("errors %v", m.errors)
	}
}
