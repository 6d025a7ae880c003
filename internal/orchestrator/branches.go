package orchestrator

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/coldcall/callengine/internal/audio"
	"github.com/coldcall/callengine/internal/detect"
	"github.com/coldcall/callengine/internal/session"
)

// meetingHangupDelay is the fixed point inside the spec's documented 15-18s
// range for the hangup that follows the meeting-booked closing line.
const meetingHangupDelay = 16 * time.Second

// optOutHangupDelay and languageHangupDelay follow the ~4s the spec gives
// for the opt-out acknowledgement; the language apology is handled the same
// way by analogy since the spec is silent on its exact figure.
const optOutHangupDelay = 4 * time.Second
const languageHangupDelay = 4 * time.Second

// voicemailHangupBuffer and openingCooldownBuffer are the fixed buffers
// added on top of estimated playback duration per §4.2/§4.7's worked
// examples.
const voicemailHangupBuffer = 2 * time.Second
const openingCooldownBuffer = 1500 * time.Millisecond

// openingCooldownFallback and voicemailHangupFallback apply when synthesis
// produced no frames at all (e.g. TTS failure), so the cooldown/hangup
// still eventually fires.
const openingCooldownFallback = 6 * time.Second
const voicemailHangupFallback = 2 * time.Second

func (c *call) beginOpening(ctx context.Context) {
	c.setState(StateOpening)
	c.generateResponse(ctx, IntentOpening,
		"Deliver your opening line now: 1-3 short sentences that introduce yourself, disclose that you are an AI assistant, and state why you're calling.")
}

func (c *call) beginMeetingClose(ctx context.Context) {
	c.generateResponse(ctx, IntentMeetingClose,
		"Give a brief warm closing of 2-3 sentences confirming you'll send a calendar invite, then let the call wind down naturally.")
}

func (c *call) beginOptOut(ctx context.Context) {
	c.sess.Lock()
	c.sess.Flags.OptOut = true
	c.sess.Unlock()
	c.deps.Observers.Broadcast(c.sessionID(), simpleEvent("opt_out_detected"))
	c.generateResponse(ctx, IntentOptOut,
		"The prospect asked to stop being contacted. Acknowledge compliance in one short sentence, apologize for the intrusion, and end the call politely. Do not continue selling.")
}

func (c *call) beginLanguageApology(ctx context.Context) {
	c.generateResponse(ctx, IntentLanguageApology,
		"Apologize briefly in English that you only speak English, offer to have someone call back at a better time, and end the call politely.")
}

func (c *call) beginVoicemail(ctx context.Context, answeredBy string) {
	c.deps.Observers.Broadcast(c.sessionID(), voicemailEvent(answeredBy))
	c.generateResponse(ctx, IntentVoicemail,
		"The call went to voicemail. Leave a natural voicemail message of 3 sentences or fewer: introduce yourself, disclose you are an AI assistant, state the reason for calling, and invite a callback.")
}

// onAMD applies the answering-machine-detection result. Fax hangs up
// immediately; a machine past its greeting triggers the voicemail branch
// exactly once; a human result is a no-op per §4.3.
func (c *call) onAMD(ctx context.Context, answeredBy string) {
	lower := strings.ToLower(answeredBy)

	switch {
	case strings.Contains(lower, "fax"):
		c.hangup(ctx, "fax detected")

	case strings.Contains(lower, "machine"):
		c.sess.Lock()
		already := c.sess.Flags.VoicemailHandled
		if !already {
			c.sess.Flags.Voicemail = true
			c.sess.Flags.VoicemailHandled = true
		}
		c.sess.Unlock()
		if already {
			return
		}

		// A response cycle in flight is invalidated: bump the epoch so its
		// eventual EvtGenerationDone is discarded as stale.
		c.genEpoch++
		c.generating = false
		c.cancelTimer(TimerTurn)
		c.setState(StateVoicemailing)
		c.beginVoicemail(ctx, answeredBy)

	default:
		// human: no action.
	}
}

// onTelephonyStatus ends the call loop promptly on a carrier-reported
// terminal status rather than waiting for the media socket to notice.
func (c *call) onTelephonyStatus(status string) {
	if isTerminalTelephonyStatus(status) {
		c.terminate("telephony status: " + status)
	}
}

func isTerminalTelephonyStatus(status string) bool {
	switch strings.ToLower(status) {
	case "completed", "busy", "no-answer", "canceled", "failed":
		return true
	default:
		return false
	}
}

// hangup requests the telephony adapter end the call in the background and
// terminates the loop; the adapter call itself never blocks the loop
// goroutine.
func (c *call) hangup(ctx context.Context, reason string) {
	callHandleID := c.sess.CallHandleID
	go func() {
		hangupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.deps.Telephony.Hangup(hangupCtx, callHandleID); err != nil {
			logErr(c.sessionID(), "hangup", err)
		}
	}()
	c.terminate(reason)
}

// onGenerationDone appends the assistant turn, broadcasts it, evaluates the
// meeting-booked gate for plain conversational turns, and kicks off speech.
// A stale result (superseded by AMD-triggered voicemail, for instance) is
// discarded via the epoch check.
func (c *call) onGenerationDone(ctx context.Context, ev Event) {
	if ev.epoch != c.genEpoch {
		return
	}
	c.generating = false

	if ev.Err != nil {
		logErr(c.sessionID(), "llm_generate", ev.Err)
		c.setState(StateListening)
		c.deps.Observers.Broadcast(c.sessionID(), errorEvent("response generation failed"))
		return
	}

	text := strings.TrimSpace(ev.Text)
	if text == "" {
		c.setState(StateListening)
		return
	}

	c.sess.Lock()
	c.sess.AppendTurn(session.RoleAssistant, text)
	if ev.Intent == IntentVoicemail {
		c.sess.AppendVoicemailLine(text)
	}

	firstTimeMeeting := false
	if ev.Intent == IntentTurn && !c.sess.Flags.MeetingBooked {
		if detect.MeetingBooked(text, c.lastUserText) {
			c.sess.Flags.MeetingBooked = true
			firstTimeMeeting = true
		}
	}
	c.sess.Unlock()

	c.deps.Observers.Broadcast(c.sessionID(), assistantSpeechEvent(text))

	if firstTimeMeeting {
		c.deps.Observers.Broadcast(c.sessionID(), meetingBookedEvent(text))
		c.armTimer(TimerMeetingGrace, 2*time.Second)
	}

	c.speak(ctx, text, ev.Intent)
}

// onSpeechDone clears the speaking flag, then schedules whatever
// intent-specific follow-up timer keeps the call moving: the opening
// cooldown, a voicemail hangup, the meeting-booked hangup, or the
// opt-out/language hangups.
func (c *call) onSpeechDone(ctx context.Context, ev Event) {
	c.sess.Lock()
	if !ev.Canceled {
		c.sess.Flags.Speaking = false
	}
	c.sess.ActiveSendCancel = nil
	c.sess.Unlock()

	if ev.Err != nil {
		logErr(c.sessionID(), "speak", ev.Err)
	}

	switch ev.Intent {
	case IntentOpening:
		c.setState(StateListening)
		c.deps.Observers.Broadcast(c.sessionID(), statusEvent("listening"))
		c.armTimer(TimerOpeningCooldownEnd, ceilPlaybackDelay(ev.Frames, openingCooldownBuffer, openingCooldownFallback))

	case IntentVoicemail:
		c.setState(StateVoicemailing)
		c.armTimer(TimerVoicemailHangup, ceilPlaybackDelay(ev.Frames, voicemailHangupBuffer, voicemailHangupFallback))

	case IntentMeetingClose:
		c.setState(StateClosing)
		c.armTimer(TimerMeetingHangup, meetingHangupDelay)

	case IntentOptOut:
		c.setState(StateOptingOut)
		c.armTimer(TimerOptOutHangup, optOutHangupDelay)

	case IntentLanguageApology:
		c.setState(StateClosing)
		c.armTimer(TimerLanguageHangup, languageHangupDelay)

	default:
		c.setState(StateListening)
		c.deps.Observers.Broadcast(c.sessionID(), statusEvent("listening"))
	}
}

// ceilPlaybackDelay rounds frameCount*20ms up to the next whole second and
// adds buffer, per the spec's `ceil(frames/8000 s) + buffer` worked
// examples. frameCount == 0 (no audio sent, e.g. a TTS failure) falls back
// to a fixed delay so the call still eventually closes.
func ceilPlaybackDelay(frameCount int, buffer, fallback time.Duration) time.Duration {
	if frameCount == 0 {
		return fallback
	}
	seconds := float64(frameCount) * (float64(audio.FrameDurationMs) / 1000)
	return time.Duration(math.Ceil(seconds))*time.Second + buffer
}
