package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/openai/openai-go/v2/packages/param"

	"github.com/coldcall/callengine/internal/control"
	"github.com/coldcall/callengine/internal/env"
	"github.com/coldcall/callengine/internal/observer"
	"github.com/coldcall/callengine/internal/orchestrator"
	"github.com/coldcall/callengine/internal/pipeline"
	"github.com/coldcall/callengine/internal/session"
	"github.com/coldcall/callengine/internal/supervisor"
	"github.com/coldcall/callengine/internal/telephony"
	"github.com/coldcall/callengine/internal/ttscache"
)

// tuning holds knobs loaded from engine.json. These are values that may
// eventually move to a database; for now a JSON file keeps them out of env
// vars, matching the teacher's gateway.json split of deployment env vars
// (secrets, addresses) from tuning knobs (this file).
type tuning struct {
	LLMEngine          string  `json:"llm_engine"`
	LLMMaxTokens       int     `json:"llm_max_tokens"`
	LLMTemperature     float64 `json:"llm_temperature"`
	ASRPoolSize        int     `json:"asr_pool_size"`
	LLMPoolSize        int     `json:"llm_pool_size"`
	TTSPoolSize        int     `json:"tts_pool_size"`
	GenerationTimeoutMs int    `json:"generation_timeout_ms"`
	VoiceID            string  `json:"voice_id"`
	OpenAIURL          string  `json:"openai_url"`
	OpenAIModel        string  `json:"openai_model"`
	AnthropicURL       string  `json:"anthropic_url"`
	AnthropicModel     string  `json:"anthropic_model"`
}

// defaultTuning returns sensible defaults matching engine.json.
func defaultTuning() tuning {
	return tuning{
		LLMEngine:           "openai",
		LLMMaxTokens:        200,
		LLMTemperature:      0.85,
		ASRPoolSize:         50,
		LLMPoolSize:         50,
		TTSPoolSize:         50,
		GenerationTimeoutMs: 10000,
		VoiceID:             "michael",
		OpenAIURL:           "https://api.openai.com",
		OpenAIModel:         "gpt-4.1-nano",
		AnthropicURL:        "https://api.anthropic.com",
		AnthropicModel:      "claude-sonnet-4-5",
	}
}

// loadTuning reads engine.json if present, otherwise returns defaults.
func loadTuning(path string) tuning {
	t := defaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Info("no config file, using defaults", "path", path)
		return t
	}
	if err = json.Unmarshal(data, &t); err != nil {
		slog.Warn("bad config file, using defaults", "path", path, "error", err)
		return defaultTuning()
	}
	slog.Info("loaded config", "path", path)
	return t
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	t := loadTuning("engine.json")

	port := env.Str("CALLENGINE_PORT", "8080")
	publicHost := env.Str("CALLENGINE_PUBLIC_HOST", "localhost:8080")
	bearerSecret := env.Str("CALLENGINE_BEARER_SECRET", "")
	callTimeoutSeconds := env.Int("CALLENGINE_RING_TIMEOUT_SECONDS", 30)
	observerOrigins := env.Str("CALLENGINE_OBSERVER_ORIGINS", "")
	observer.SetAllowedOrigins(splitNonEmpty(observerOrigins, ","))

	accountSID := env.Str("CARRIER_ACCOUNT_SID", "")
	authToken := env.Str("CARRIER_AUTH_TOKEN", "")
	fromNumber := env.Str("CARRIER_FROM_NUMBER", "")
	carrierBaseURL := env.Str("CARRIER_BASE_URL", "https://api.twilio.com/2010-04-01")

	asrAPIKey := env.Str("ASR_API_KEY", "")
	asrURL := env.Str("ASR_WS_URL", "wss://api.deepgram.com/v1/listen")

	ttsAPIKey := env.Str("TTS_API_KEY", "")
	ttsURL := env.Str("TTS_URL", "")

	openaiAPIKey := env.Str("OPENAI_API_KEY", "")
	anthropicAPIKey := env.Str("ANTHROPIC_API_KEY", "")
	anthropicRawKey := env.Str("ANTHROPIC_RAW_API_KEY", "")
	openaiRawKey := env.Str("OPENAI_RAW_API_KEY", "")
	ollamaURL := env.Str("OLLAMA_URL", "")
	ollamaModel := env.Str("OLLAMA_MODEL", "llama3.2:3b")

	telephonyAdapter := telephony.NewCarrierAdapter(accountSID, authToken, fromNumber, carrierBaseURL)
	asrAdapter := pipeline.NewStreamingASRClient(asrAPIKey, asrURL)
	llm := initLLM(openaiAPIKey, anthropicAPIKey, ollamaURL, ollamaModel, openaiRawKey, anthropicRawKey, t)

	ttsCache := ttscache.New()
	ttsBackend := pipeline.NewHTTPTTSBackend(ttsAPIKey, ttsURL, t.VoiceID, t.TTSPoolSize)
	ttsAdapter := pipeline.NewTTSAdapter(ttsBackend, ttsCache, t.VoiceID)

	warmCtx, warmCancel := context.WithTimeout(context.Background(), 30*time.Second)
	ttsAdapter.WarmCache(warmCtx)
	defer warmCancel()

	sessions := session.NewManager()
	observers := observer.NewHub()
	sup := supervisor.New()

	chatFn := func(ctx context.Context, systemPrompt string, history []pipeline.Message, onToken pipeline.TokenCallback) (*pipeline.LLMResult, error) {
		return llm.Chat(ctx, systemPrompt, history, t.LLMEngine, onToken)
	}

	orch := orchestrator.New(orchestrator.Deps{
		Sessions:          sessions,
		Observers:         observers,
		Telephony:         telephonyAdapter,
		ASR:               asrAdapter,
		LLM:               chatFn,
		TTS:               ttsAdapter,
		Supervisor:        sup,
		GenerationTimeout: time.Duration(t.GenerationTimeoutMs) * time.Millisecond,
	})

	mux := http.NewServeMux()
	control.RegisterRoutes(mux, control.Deps{
		Sessions:           sessions,
		Observers:          observers,
		Orchestrator:       orch,
		Telephony:          telephonyAdapter,
		TTS:                ttsAdapter,
		Supervisor:         sup,
		PublicHost:         publicHost,
		BearerSecret:       bearerSecret,
		CallTimeoutSeconds: callTimeoutSeconds,
	})

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: mux}

	heartbeatCtx, stopHeartbeat := context.WithCancel(context.Background())
	go sup.RunHeartbeat(heartbeatCtx)
	defer stopHeartbeat()

	go supervisor.AwaitShutdown(srv, 30*time.Second)

	slog.Info("callengine starting", "addr", addr, "public_host", publicHost)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("callengine stopped")
}

// initLLM wires the SDK-routed engines (openai/anthropic via
// openai-agents-go) plus a set of raw HTTP-shaped engines
// (ollama/openai-raw/anthropic-raw) that bypass the SDK entirely — an
// operator who'd rather talk to a self-hosted Ollama box, or hit a vendor's
// completions endpoint directly without the agents runtime in the loop,
// just points the corresponding env var and flips engine.json's
// llm_engine.
func initLLM(openaiAPIKey, anthropicAPIKey, ollamaURL, ollamaModel, openaiRawKey, anthropicRawKey string, t tuning) *pipeline.AgentLLM {
	router := pipeline.NewAgentLLM(t.LLMEngine, t.LLMMaxTokens, t.LLMTemperature)
	if openaiAPIKey != "" {
		router.Register("openai", agents.NewOpenAIProvider(agents.OpenAIProviderParams{
			BaseURL:      param.NewOpt(t.OpenAIURL + "/v1/"),
			APIKey:       param.NewOpt(openaiAPIKey),
			UseResponses: param.NewOpt(true),
		}), t.OpenAIModel)
	}
	if anthropicAPIKey != "" {
		router.Register("anthropic", agents.NewOpenAIProvider(agents.OpenAIProviderParams{
			BaseURL:      param.NewOpt(t.AnthropicURL + "/v1/"),
			APIKey:       param.NewOpt(anthropicAPIKey),
			UseResponses: param.NewOpt(false),
		}), t.AnthropicModel)
	}
	if ollamaURL != "" {
		router.RegisterRaw("ollama", pipeline.NewOllamaLLMClient(ollamaURL, ollamaModel, t.LLMMaxTokens, t.LLMTemperature, t.LLMPoolSize), ollamaModel)
	}
	if openaiRawKey != "" {
		router.RegisterRaw("openai-raw", pipeline.NewOpenAICompletionsClient(openaiRawKey, t.OpenAIURL, t.OpenAIModel, t.LLMMaxTokens, t.LLMTemperature, t.LLMPoolSize), t.OpenAIModel)
	}
	if anthropicRawKey != "" {
		router.RegisterRaw("anthropic-raw", pipeline.NewAnthropicLLMClient(anthropicRawKey, t.AnthropicURL, t.AnthropicModel, t.LLMMaxTokens, t.LLMTemperature, t.LLMPoolSize), t.AnthropicModel)
	}
	return router
}

// splitNonEmpty splits a delimited env var into trimmed, non-empty parts.
func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
