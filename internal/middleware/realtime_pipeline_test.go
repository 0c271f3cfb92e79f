package middleware

import (
	"context"
	"fmt"
	"testing"
	"time"

	"CoinPulse/internal/domain/models"
)

type recordingProc struct {
	ticks []*models.Tick
	err   error
}

func (p *recordingProc) Process(_ context.Context, t *models.Tick) error {
	if p.err != nil {
		return p.err
	}
	p.ticks = append(p.ticks, t)
	return nil
}

type noopMetrics struct{}

func (noopMetrics) RecordMessageSent(string, string) {}
func (noopMetrics) RecordError(string)               {}
func (noopMetrics) RecordLastPrice(string, float64)  {}
func (noopMetrics) RecordLatency(string, float64)    {}
func (noopMetrics) RecordAnalysisRun(string, string) {}
func (noopMetrics) RecordCandidates(int, int)        {}

func validTick() *models.Tick {
	return &models.Tick{Symbol: "BTCUSDT", Timestamp: time.Now().Unix(), Price: 98000, Volume: 0.5}
}

func TestPipelineForwardsValidTick(t *testing.T) {
	proc := &recordingProc{}
	p := NewRealtimePipeline(proc, noopMetrics{})

	if err := p.Process(context.Background(), validTick()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.ticks) != 1 {
		t.Fatalf("expected 1 forwarded tick, got %d", len(proc.ticks))
	}
}

func TestPipelineRejectsInvalidTicks(t *testing.T) {
	proc := &recordingProc{}
	p := NewRealtimePipeline(proc, noopMetrics{})

	cases := []*models.Tick{
		nil,
		{Symbol: "", Timestamp: 1, Price: 1, Volume: 1},
		{Symbol: "BTCUSDT", Timestamp: 0, Price: 1, Volume: 1},
		{Symbol: "BTCUSDT", Timestamp: 1, Price: -1, Volume: 1},
	}
	for i, tk := range cases {
		if err := p.Process(context.Background(), tk); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if len(proc.ticks) != 0 {
		t.Fatalf("invalid ticks must not reach downstream, got %d", len(proc.ticks))
	}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	proc := &recordingProc{}
	p := NewRealtimePipeline(proc, noopMetrics{}, WithMaxRPS(1))

	// Two back-to-back ticks for the same symbol within the same second:
	// the second is dropped without error.
	if err := p.Process(context.Background(), validTick()); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if err := p.Process(context.Background(), validTick()); err != nil {
		t.Fatalf("throttled tick must be dropped silently, got %v", err)
	}
	if len(proc.ticks) != 1 {
		t.Fatalf("expected 1 tick downstream, got %d", len(proc.ticks))
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &recordingProc{err: fmt.Errorf("downstream down")}
	p := NewRealtimePipeline(proc, noopMetrics{}, WithBufferSize(4))

	if err := p.Process(context.Background(), validTick()); err == nil {
		t.Fatal("expected downstream error to propagate")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("expected tick buffered for retry, buffer depth %d", len(p.bufCh))
	}
}

func TestPipelineTransformHook(t *testing.T) {
	proc := &recordingProc{}
	p := NewRealtimePipeline(proc, noopMetrics{},
		WithTransform(func(tk *models.Tick) *models.Tick {
			tk.Symbol = "ETHUSDT"
			return tk
		}),
	)

	if err := p.Process(context.Background(), validTick()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.ticks[0].Symbol != "ETHUSDT" {
		t.Fatalf("transform not applied, symbol %s", proc.ticks[0].Symbol)
	}
}
