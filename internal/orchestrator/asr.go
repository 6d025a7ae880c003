package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/coldcall/callengine/internal/pipeline"
)

// asrConnectTimeout bounds how long a call waits for the streaming ASR
// connection before giving up and running one-way (§4.3's failure mode:
// the orchestrator continues, Michael still delivers the opening).
const asrConnectTimeout = 8 * time.Second

// connectASR opens the streaming ASR session in the background so call
// setup never blocks on it. A failure here is logged and the call
// continues deaf — the orchestrator never depends on ASR being present.
func (c *call) connectASR() {
	if c.deps.ASR == nil {
		slog.Warn("no asr adapter configured, call will run one-way", "session_id", c.sessionID())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), asrConnectTimeout)
	defer cancel()

	asrSession, err := c.deps.ASR.Connect(ctx, pipeline.DefaultASRConfig())
	if err != nil {
		slog.Error("asr connect failed, continuing degraded", "session_id", c.sessionID(), "error", err)
		return
	}

	c.push(Event{Kind: EvtTimer, Timer: timerASRConnected, asrSession: asrSession})
}

// timerASRConnected is a private pseudo-timer kind used only to hand the
// connected ASR session back to the call loop through the normal event
// channel, keeping "assign c.asrSession" inside the single-writer goroutine.
const timerASRConnected TimerKind = "asr_connected"

func (c *call) onASRConnected(asrSession *pipeline.ASRSession) {
	c.asrSession = asrSession
	go c.readASREvents(asrSession)

	for _, frame := range c.pendingAudio {
		if err := asrSession.SendAudio(frame); err != nil {
			logErr(c.sessionID(), "asr_flush", err)
			break
		}
	}
	c.pendingAudio = nil
}

func (c *call) readASREvents(asrSession *pipeline.ASRSession) {
	for ev := range asrSession.Events() {
		c.push(Event{Kind: EvtASR, ASR: ev})
	}
	// ASR connection dropped mid-call. One reconnect attempt; failure
	// leaves the call one-way per §4.3.
	slog.Warn("asr connection dropped, attempting one reconnect", "session_id", c.sessionID())
	c.reconnectASR()
}

func (c *call) reconnectASR() {
	if c.deps.ASR == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), asrConnectTimeout)
	defer cancel()

	asrSession, err := c.deps.ASR.Connect(ctx, pipeline.DefaultASRConfig())
	if err != nil {
		slog.Error("asr reconnect failed, call continues one-way", "session_id", c.sessionID(), "error", err)
		return
	}
	c.push(Event{Kind: EvtTimer, Timer: timerASRConnected, asrSession: asrSession})
}
