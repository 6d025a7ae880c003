package pipeline

import (
	"context"
	"testing"

	"github.com/coldcall/callengine/internal/audio"
	"github.com/coldcall/callengine/internal/ttscache"
)

type fakeTTSBackend struct {
	calls   int
	samples []float32
	rate    int
}

func (f *fakeTTSBackend) Synthesize(ctx context.Context, text, voiceID string) ([]byte, int, error) {
	f.calls++
	return audio.SamplesToWAV(f.samples, f.rate), 0, nil
}

func TestSynthesizeEmptyReturnsNilWithoutBackendCall(t *testing.T) {
	backend := &fakeTTSBackend{samples: []float32{0.1, 0.2}, rate: 8000}
	adapter := NewTTSAdapter(backend, ttscache.New(), "voice-1")

	result, err := adapter.Synthesize(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result for whitespace input, got %v", result)
	}
	if backend.calls != 0 {
		t.Fatalf("expected no backend call, got %d", backend.calls)
	}
}

func TestSynthesizeCachesShortResponses(t *testing.T) {
	backend := &fakeTTSBackend{samples: make([]float32, 8000), rate: 8000}
	adapter := NewTTSAdapter(backend, ttscache.New(), "voice-1")
	ctx := context.Background()

	r1, err := adapter.Synthesize(ctx, "Sounds good.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.CacheHit {
		t.Fatal("expected first call to be a cache miss")
	}
	if len(r1.Frames) == 0 {
		t.Fatal("expected non-empty frames")
	}

	r2, err := adapter.Synthesize(ctx, "sounds good")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r2.CacheHit {
		t.Fatal("expected second call (normalized match) to hit cache")
	}
	if backend.calls != 1 {
		t.Fatalf("expected exactly one backend call, got %d", backend.calls)
	}
}

func TestEstimatePlaybackSeconds(t *testing.T) {
	frames := make([][]byte, 50)
	if got := EstimatePlaybackSeconds(frames); got != 1.0 {
		t.Errorf("EstimatePlaybackSeconds(50 frames) = %f, want 1.0", got)
	}
}
