package orchestrator

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/coldcall/callengine/internal/metrics"
	"github.com/coldcall/callengine/internal/pipeline"
	"github.com/coldcall/callengine/internal/session"
	"github.com/coldcall/callengine/internal/telephony"
)

// pendingASRFrames bounds the buffer of inbound frames held while the ASR
// connection is still being established (§5's "buffered in a bounded
// queue and flushed on connect").
const pendingASRFrames = 250

// call is one active session's state machine: a single loop goroutine owns
// every mutation of the session and the machine's own bookkeeping, so
// external callbacks (media reader, ASR reader, timers, AMD/status
// notifications) only ever enqueue events.
type call struct {
	deps    Deps
	sess    *session.Session
	channel *telephony.Channel

	events chan Event
	done   chan struct{}

	state State

	timerMu sync.Mutex
	timers  map[TimerKind]*time.Timer

	asrSession   *pipeline.ASRSession
	pendingAudio [][]byte

	turnBuffer   strings.Builder
	lastLanguage string
	lastUserText string

	generating       bool
	genEpoch         int
	bargeInTriggered bool
}

func newCall(deps Deps, sess *session.Session, channel *telephony.Channel) *call {
	c := &call{
		deps:    deps,
		sess:    sess,
		channel: channel,
		events:  make(chan Event, 128),
		done:    make(chan struct{}),
		state:   StateIdle,
		timers:  make(map[TimerKind]*time.Timer),
	}
	go c.connectASR()
	return c
}

func (c *call) sessionID() string {
	return c.sess.Identity.SessionID
}

// push enqueues an event, or drops it silently once the call has
// terminated — by then nothing is left to observe it.
func (c *call) push(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *call) setState(s State) {
	c.state = s
}

// run drains events until the call reaches StateTerminal or ctx is
// canceled, serializing every mutation of c.sess through this one
// goroutine (the single-writer-per-session invariant in §5).
func (c *call) run(ctx context.Context) {
	defer c.teardown()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			c.dispatch(ctx, ev)
			if c.state == StateTerminal {
				return
			}
		}
	}
}

func (c *call) dispatch(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EvtMedia:
		c.onMedia(ctx, ev.Media)
	case EvtASR:
		c.onASR(ctx, ev.ASR)
	case EvtAMD:
		c.onAMD(ctx, ev.AMDResult)
	case EvtTelephony:
		c.onTelephonyStatus(ev.TelephonyStatus)
	case EvtTimer:
		if ev.Timer == timerASRConnected {
			c.onASRConnected(ev.asrSession)
			return
		}
		c.onTimer(ctx, ev.Timer)
	case EvtGenerationDone:
		c.onGenerationDone(ctx, ev)
	case EvtSpeechDone:
		c.onSpeechDone(ctx, ev)
	case EvtTerminate:
		c.terminate(ev.Reason)
	}
}

func (c *call) onMedia(ctx context.Context, ev telephony.MediaEvent) {
	switch ev.Kind {
	case telephony.MediaConnected:
		slog.Debug("media stream connected", "session_id", c.sessionID())
	case telephony.MediaStart:
		c.onMediaStart(ev.StreamSid)
	case telephony.MediaFrame:
		c.onMediaFrame(ctx, ev.Payload)
	case telephony.MediaStop:
		c.terminate("media stream stopped")
	}
}

func (c *call) onMediaStart(streamSid string) {
	c.sess.Lock()
	duplicate := c.sess.Flags.OpeningSent
	if !duplicate {
		c.sess.Flags.OpeningSent = true
		c.sess.Flags.OpeningCooldown = true
		c.sess.Status = session.StatusConnected
		c.sess.ConnectedAt = time.Now()
		c.sess.MediaStreamID = streamSid
	}
	c.sess.Unlock()

	if duplicate {
		slog.Info("duplicate media start ignored", "session_id", c.sessionID(), "stream_sid", streamSid)
		return
	}

	metrics.CallsActive.Inc()
	c.deps.Observers.Broadcast(c.sessionID(), statusEvent("connected"))

	c.armTimer(TimerSendOpening, 800*time.Millisecond)
	c.armTimer(TimerOpeningSafety, 15*time.Second)
}

func (c *call) onMediaFrame(ctx context.Context, payloadB64 string) {
	c.maybeBargeIn(ctx, true)

	frame, err := base64.StdEncoding.DecodeString(payloadB64)
	if err != nil {
		return
	}

	if c.asrSession == nil {
		if len(c.pendingAudio) >= pendingASRFrames {
			c.pendingAudio = c.pendingAudio[1:]
		}
		c.pendingAudio = append(c.pendingAudio, frame)
		return
	}

	if err := c.asrSession.SendAudio(frame); err != nil {
		logErr(c.sessionID(), "asr_send", err)
	}
}

func (c *call) teardown() {
	c.cancelAllTimers()
	if c.asrSession != nil {
		c.asrSession.Close()
	}
	metrics.CallsActive.Dec()
	close(c.done)
}

func (c *call) terminate(reason string) {
	if c.state == StateTerminal {
		return
	}
	slog.Info("call terminated", "session_id", c.sessionID(), "reason", reason)
	c.setState(StateTerminal)
}
