package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coldcall/callengine/internal/observer"
	"github.com/coldcall/callengine/internal/pipeline"
	"github.com/coldcall/callengine/internal/session"
	"github.com/coldcall/callengine/internal/supervisor"
	"github.com/coldcall/callengine/internal/telephony"
)

// ChatFunc is the LLM Adapter contract the orchestrator consumes: a
// single-shot completion over system instructions plus history, with the
// engine already resolved by the caller's router (see cmd/callengine's
// wiring of pipeline.AgentLLM to a fixed default engine).
type ChatFunc func(ctx context.Context, systemPrompt string, history []pipeline.Message, onToken pipeline.TokenCallback) (*pipeline.LLMResult, error)

// Deps are the shared collaborators every call's orchestration wires
// together; one Orchestrator instance is constructed at process startup
// and handles every subsequent call.
type Deps struct {
	Sessions   *session.Manager
	Observers  *observer.Hub
	Telephony  telephony.Adapter
	ASR        pipeline.ASRAdapter
	LLM        ChatFunc
	TTS        *pipeline.TTSAdapter
	Supervisor *supervisor.Supervisor

	// GenerationTimeout bounds a single LLM round-trip so a hung vendor
	// response cannot wedge a call's single-generation guard forever.
	GenerationTimeout time.Duration
}

// Orchestrator owns the registry of live per-call state machines and the
// shared collaborators they're built from.
type Orchestrator struct {
	deps Deps

	mu    sync.Mutex
	calls map[string]*call
}

// New creates an Orchestrator ready to accept media streams.
func New(deps Deps) *Orchestrator {
	if deps.GenerationTimeout == 0 {
		deps.GenerationTimeout = 10 * time.Second
	}
	return &Orchestrator{deps: deps, calls: make(map[string]*call)}
}

// HandleMediaStream attaches the bidirectional media channel to the call's
// state machine and blocks for the life of the call — mirroring the
// teacher's ws.Handler.runSession, which blocks its HTTP handler goroutine
// for the duration of one call. mediaEvents closing ends the loop.
func (o *Orchestrator) HandleMediaStream(ctx context.Context, sess *session.Session, channel *telephony.Channel, mediaEvents <-chan telephony.MediaEvent) {
	sessionID := sess.Identity.SessionID

	c := newCall(o.deps, sess, channel)

	o.mu.Lock()
	o.calls[sessionID] = c
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.calls, sessionID)
		o.mu.Unlock()
	}()

	go forwardMedia(mediaEvents, c.events)

	o.deps.Supervisor.Guard(sessionID, func() {
		c.run(ctx)
	})
}

func forwardMedia(mediaEvents <-chan telephony.MediaEvent, out chan<- Event) {
	for ev := range mediaEvents {
		out <- Event{Kind: EvtMedia, Media: ev}
	}
	out <- Event{Kind: EvtTerminate, Reason: "media stream closed"}
}

// NotifyAMD delivers an answering-machine-detection result to an active
// call. If the media stream has not connected yet there is no channel to
// play a voicemail over, so the result is logged and dropped — the spec
// treats this as a degraded, not fatal, condition.
func (o *Orchestrator) NotifyAMD(sessionID, answeredBy string) error {
	o.mu.Lock()
	c, ok := o.calls[sessionID]
	o.mu.Unlock()
	if !ok {
		err := fmt.Errorf("amd result for %s arrived before media stream connected", sessionID)
		slog.Warn("amd result dropped", "session_id", sessionID, "error", err)
		return err
	}
	c.push(Event{Kind: EvtAMD, AMDResult: answeredBy})
	return nil
}

// NotifyTelephonyStatus informs an active call of a carrier status update,
// letting the loop end itself promptly instead of waiting for the media
// socket to notice the hangup on its own.
func (o *Orchestrator) NotifyTelephonyStatus(sessionID, status string, durationSeconds float64) {
	o.mu.Lock()
	c, ok := o.calls[sessionID]
	o.mu.Unlock()
	if !ok {
		return
	}
	c.push(Event{Kind: EvtTelephony, TelephonyStatus: status, TelephonyDuration: durationSeconds})
}

// Active reports whether sessionID currently has a running call loop.
func (o *Orchestrator) Active(sessionID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.calls[sessionID]
	return ok
}

func logErr(sessionID, stage string, err error) {
	if err != nil {
		slog.Error("orchestrator stage failed", "session_id", sessionID, "stage", stage, "error", err)
	}
}
