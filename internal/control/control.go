// Package control is the HTTP/WS surface: it resolves requests to sessions,
// authenticates state-changing calls, and wires the telephony webhooks to
// the orchestrator. Generalizes the teacher's registerRoutes/deps struct
// pattern (services/gateway/cmd/gateway/routes.go) to the call-engine's
// endpoint table (spec §6).
package control

import (
	"net/http"

	"github.com/coldcall/callengine/internal/observer"
	"github.com/coldcall/callengine/internal/orchestrator"
	"github.com/coldcall/callengine/internal/pipeline"
	"github.com/coldcall/callengine/internal/session"
	"github.com/coldcall/callengine/internal/supervisor"
	"github.com/coldcall/callengine/internal/telephony"
)

// Deps are every collaborator the HTTP surface needs. One instance is built
// at process startup in cmd/callengine and handed to RegisterRoutes.
type Deps struct {
	Sessions     *session.Manager
	Observers    *observer.Hub
	Orchestrator *orchestrator.Orchestrator
	Telephony    telephony.Adapter
	TTS          *pipeline.TTSAdapter
	Supervisor   *supervisor.Supervisor

	// PublicHost is this process's externally reachable host:port (or
	// host), used to stamp the webhook/media-stream/status/AMD callback
	// URLs handed to the carrier at call placement.
	PublicHost string

	// BearerSecret authenticates state-changing requests via constant-time
	// comparison (§6: "all state-changing requests carry a bearer shared
	// secret").
	BearerSecret string

	// CallTimeoutSeconds bounds how long the carrier rings before giving up.
	CallTimeoutSeconds int
}

// RegisterRoutes wires every endpoint in §6's table to mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	mux.HandleFunc("GET /health", handleHealth(d))
	mux.HandleFunc("GET /", handleHealth(d))
	mux.HandleFunc("GET /voice/preview", handleVoicePreview(d))

	mux.HandleFunc("POST /call/initiate", requireBearer(d.BearerSecret, handleInitiate(d)))
	mux.HandleFunc("POST /call/webhook/{sessionId}", handleWebhook(d))
	mux.HandleFunc("POST /call/status/{sessionId}", handleStatus(d))
	mux.HandleFunc("POST /call/amd/{sessionId}", handleAMD(d))
	mux.HandleFunc("GET /call/session/{sessionId}", handleSessionSnapshot(d))

	mux.HandleFunc("GET /call/media/{sessionId}", handleMediaStream(d))
	mux.HandleFunc("GET /call/transcript/{sessionId}", handleTranscriptStream(d))
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
