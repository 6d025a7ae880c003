package orchestrator

import (
	"context"
	"strings"

	"github.com/coldcall/callengine/internal/detect"
	"github.com/coldcall/callengine/internal/metrics"
	"github.com/coldcall/callengine/internal/pipeline"
	"github.com/coldcall/callengine/internal/session"
)

func (c *call) onASR(ctx context.Context, ev pipeline.ASREvent) {
	switch ev.Kind {
	case pipeline.EventInterim:
		if pipeline.IsWhitespaceOnly(ev.Text) {
			return
		}
		c.maybeBargeIn(ctx, false)
		c.deps.Observers.Broadcast(c.sessionID(), interimEvent(ev.Text))

	case pipeline.EventFinal:
		if pipeline.IsWhitespaceOnly(ev.Text) {
			return
		}
		c.maybeBargeIn(ctx, false)
		if ev.DetectedLanguage != "" {
			c.lastLanguage = ev.DetectedLanguage
		}
		if c.turnBuffer.Len() > 0 {
			c.turnBuffer.WriteByte(' ')
		}
		c.turnBuffer.WriteString(ev.Text)
		c.armTimer(TimerTurn, pipeline.TurnTimerDuration(ev.TurnStatus))

	case pipeline.EventUtteranceEnd:
		if c.turnBuffer.Len() > 0 {
			c.cancelTimer(TimerTurn)
			c.dispatchTurn(ctx)
		}
	}
}

func (c *call) onTimer(ctx context.Context, kind TimerKind) {
	switch kind {
	case TimerSendOpening:
		c.beginOpening(ctx)
	case TimerOpeningSafety, TimerOpeningCooldownEnd:
		c.clearOpeningCooldownOnce()
	case TimerTurn:
		c.dispatchTurn(ctx)
	case TimerMeetingGrace:
		c.beginMeetingClose(ctx)
	case TimerMeetingHangup, TimerVoicemailHangup, TimerOptOutHangup, TimerLanguageHangup:
		c.hangup(ctx, string(kind))
	}
}

func (c *call) clearOpeningCooldownOnce() {
	c.sess.Lock()
	wasActive := c.sess.Flags.OpeningCooldown
	c.sess.Flags.OpeningCooldown = false
	c.sess.Unlock()

	if wasActive {
		c.cancelTimer(TimerOpeningSafety)
		c.cancelTimer(TimerOpeningCooldownEnd)
	}
}

// dispatchTurn runs the full detector pipeline over the accumulated turn
// buffer in the order §4.7 specifies: opt-out, then gatekeeper, then
// callback, then sentiment, then BANT/objection — before deciding whether
// to generate a response at all.
func (c *call) dispatchTurn(ctx context.Context) {
	text := strings.TrimSpace(c.turnBuffer.String())
	c.turnBuffer.Reset()
	if text == "" {
		return
	}
	c.lastUserText = text

	c.sess.Lock()
	c.sess.AppendTurn(session.RoleUser, text)
	cooldownActive := c.sess.Flags.OpeningCooldown
	firstName := c.sess.Identity.FirstName
	c.sess.Unlock()

	c.deps.Observers.Broadcast(c.sessionID(), userSpeechEvent(text))

	if detect.OptOut(text) {
		c.beginOptOut(ctx)
		return
	}

	c.runGatekeeper(text, firstName)
	c.runCallback(text)
	c.runSentiment(text)
	c.runQualification(text)

	if c.lastLanguage != "" && !isEnglish(c.lastLanguage) {
		c.sess.Lock()
		already := c.sess.Flags.NonEnglish
		c.sess.Flags.NonEnglish = true
		c.sess.Unlock()
		if !already {
			c.deps.Observers.Broadcast(c.sessionID(), languageEvent(c.lastLanguage))
			c.beginLanguageApology(ctx)
			return
		}
	}

	if cooldownActive {
		return
	}

	c.generateResponse(ctx, IntentTurn, "")
}

func (c *call) runGatekeeper(text, firstName string) {
	c.sess.Lock()
	alreadyGatekeeper := c.sess.Flags.Gatekeeper
	if !alreadyGatekeeper && detect.Gatekeeper(text) {
		c.sess.Flags.Gatekeeper = true
		c.sess.Unlock()
		c.deps.Observers.Broadcast(c.sessionID(), simpleEvent("gatekeeper_detected"))
		return
	}
	navigated := alreadyGatekeeper && !c.sess.Flags.GatekeeperNavigated && detect.GatekeeperNavigated(text, firstName)
	if navigated {
		c.sess.Flags.GatekeeperNavigated = true
	}
	c.sess.Unlock()
	if navigated {
		c.deps.Observers.Broadcast(c.sessionID(), simpleEvent("gatekeeper_navigated"))
	}
}

func (c *call) runCallback(text string) {
	result := detect.Callback(text)
	if !result.Requested {
		return
	}
	c.sess.Lock()
	c.sess.Flags.CallbackRequested = true
	if result.Time != "" {
		c.sess.CallbackTime = result.Time
	}
	c.sess.Unlock()
	c.deps.Observers.Broadcast(c.sessionID(), simpleEvent("callback_requested"))
}

func (c *call) runSentiment(text string) {
	c.sess.Lock()
	prior := c.sess.Sentiment.Score
	c.sess.Unlock()

	score, label := detect.Sentiment(text, prior)

	c.sess.Lock()
	c.sess.UpdateSentiment(score, label)
	c.sess.Unlock()

	c.deps.Observers.Broadcast(c.sessionID(), sentimentEvent(score, label))
}

func (c *call) runQualification(text string) {
	if detect.Objection(text) {
		c.sess.Lock()
		c.sess.Counters.ObjectionCount++
		c.sess.Unlock()
	}

	budget, authority, need, timeline := detect.BANTSignal(text)
	c.sess.Lock()
	c.sess.Counters.BANT.Budget = c.sess.Counters.BANT.Budget || budget
	c.sess.Counters.BANT.Authority = c.sess.Counters.BANT.Authority || authority
	c.sess.Counters.BANT.Need = c.sess.Counters.BANT.Need || need
	c.sess.Counters.BANT.Timeline = c.sess.Counters.BANT.Timeline || timeline
	c.sess.Unlock()
}

// maybeBargeIn fires the barge-in interrupt at most once per assistant
// utterance: the first sign of prospect speech while Speaking is true
// cancels the active send and clears the playback buffer.
func (c *call) maybeBargeIn(ctx context.Context, fromMediaFrame bool) {
	c.sess.Lock()
	if !c.sess.Flags.Speaking || c.bargeInTriggered {
		c.sess.Unlock()
		return
	}
	c.bargeInTriggered = true
	c.sess.Flags.Speaking = false
	c.sess.Counters.BargeInCount++
	token := c.sess.ActiveSendCancel
	count := c.sess.Counters.BargeInCount
	c.sess.Unlock()

	if token != nil {
		token.Cancel()
	}
	if err := c.channel.ClearPlayback(); err != nil {
		logErr(c.sessionID(), "clear_playback", err)
	}
	metrics.BargeIns.Inc()
	c.deps.Observers.Broadcast(c.sessionID(), bargeInEvent(count))
}

func isEnglish(lang string) bool {
	return strings.HasPrefix(strings.ToLower(lang), "en")
}
