package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/coldcall/callengine/internal/audio"
	"github.com/coldcall/callengine/internal/metrics"
	"github.com/coldcall/callengine/internal/ttscache"
)

// TTSResult is a successful synthesis: wire-ready frames plus latency.
type TTSResult struct {
	Frames    [][]byte
	LatencyMs float64
	CacheHit  bool
}

// TTSBackend calls an external text-to-speech vendor and returns a WAV body
// plus a sample rate; a non-zero rate overrides the one in the WAV header,
// zero keeps the header's rate.
type TTSBackend interface {
	Synthesize(ctx context.Context, text, voiceID string) (audioBytes []byte, sampleRate int, err error)
}

// TTSAdapter converts response text to µ-law frames, consulting the Response
// Cache first and warming it in the background on startup.
type TTSAdapter struct {
	backend TTSBackend
	cache   *ttscache.Cache
	voiceID string
}

// NewTTSAdapter wires a backend and cache together.
func NewTTSAdapter(backend TTSBackend, cache *ttscache.Cache, voiceID string) *TTSAdapter {
	return &TTSAdapter{backend: backend, cache: cache, voiceID: voiceID}
}

// Synthesize converts text to µ-law frames. Empty or whitespace-only input
// returns (nil, nil) with no backend call. Eligible short responses are
// cached by normalized text.
func (a *TTSAdapter) Synthesize(ctx context.Context, text string) (*TTSResult, error) {
	if IsWhitespaceOnly(text) {
		return nil, nil
	}

	key := ttscache.Normalize(text)
	cacheable := ttscache.Cacheable(key)

	if cacheable {
		if frames, ok := a.cache.Get(key); ok {
			metrics.TTSCacheHits.Inc()
			return &TTSResult{Frames: frames, CacheHit: true}, nil
		}
	}
	metrics.TTSCacheMisses.Inc()

	start := time.Now()
	compressed, sampleRate, err := a.backend.Synthesize(ctx, text, a.voiceID)
	if err != nil {
		metrics.Errors.WithLabelValues("tts", "synthesize").Inc()
		return nil, fmt.Errorf("tts synthesize: %w", err)
	}

	samples, decodedRate, err := audio.DecodeWAV(compressed)
	if err != nil {
		metrics.Errors.WithLabelValues("tts", "decode").Inc()
		return nil, fmt.Errorf("tts decode: %w", err)
	}
	if sampleRate != 0 {
		decodedRate = sampleRate
	}

	wire, err := audio.Encode(samples, decodedRate, audio.CodecG711Ulaw)
	if err != nil {
		metrics.Errors.WithLabelValues("tts", "encode").Inc()
		return nil, fmt.Errorf("tts encode: %w", err)
	}
	frames := audio.Frame(wire)

	latency := time.Since(start)
	metrics.StageDuration.WithLabelValues("tts").Observe(latency.Seconds())

	if cacheable {
		a.cache.Put(key, frames)
	}

	return &TTSResult{Frames: frames, LatencyMs: float64(latency.Milliseconds())}, nil
}

// WarmCache synthesizes the fixed warm-list of short acknowledgement
// phrases in the background; failures are logged and otherwise ignored —
// warming is best-effort and must never block call handling.
func (a *TTSAdapter) WarmCache(ctx context.Context) {
	for _, phrase := range ttscache.WarmPhrases {
		go func(text string) {
			if _, err := a.Synthesize(ctx, text); err != nil {
				slog.Warn("tts cache warm failed", "phrase", text, "error", err)
			}
		}(phrase)
	}
}

// EstimatePlaybackSeconds estimates how long a set of 20ms frames takes to
// play out. The orchestrator does not call it; its timers use its own
// frame-count-based delay (ceilPlaybackDelay).
func EstimatePlaybackSeconds(frames [][]byte) float64 {
	return float64(len(frames)) * (float64(audio.FrameDurationMs) / 1000)
}

// HTTPTTSBackend is a generic HTTP TTS vendor backend: POST text + voice id,
// receive a WAV body. This shape (JSON request, WAV response) is the common
// denominator across hosted low-latency TTS vendors.
type HTTPTTSBackend struct {
	apiKey string
	url    string
	model  string
	client *http.Client
}

// NewHTTPTTSBackend creates a pooled HTTP client against a TTS vendor.
func NewHTTPTTSBackend(apiKey, url, model string, poolSize int) *HTTPTTSBackend {
	return &HTTPTTSBackend{
		apiKey: apiKey,
		url:    url,
		model:  model,
		client: NewPooledHTTPClient(poolSize, 15*time.Second),
	}
}

func (b *HTTPTTSBackend) Synthesize(ctx context.Context, text, voiceID string) ([]byte, int, error) {
	body, err := json.Marshal(map[string]any{
		"text":     text,
		"voice_id": voiceID,
		"model":    b.model,
		"format":   "wav",
	})
	if err != nil {
		return nil, 0, fmt.Errorf("marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, 0, fmt.Errorf("tts status %d: %s", resp.StatusCode, errBody)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read tts response: %w", err)
	}
	return data, 0, nil
}
