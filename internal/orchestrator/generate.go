package orchestrator

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/coldcall/callengine/internal/pipeline"
	"github.com/coldcall/callengine/internal/prompts"
	"github.com/coldcall/callengine/internal/session"
)

// generateResponse requests one LLM completion in the background and posts
// its outcome back into the call's event channel, keeping the single
// generation-at-a-time guard (§4.7) and the single-writer invariant (§5)
// intact: the network call never touches c.sess directly.
func (c *call) generateResponse(ctx context.Context, intent Intent, extraInstruction string) {
	if c.generating {
		return
	}
	c.generating = true
	c.genEpoch++
	epoch := c.genEpoch
	c.setState(StateGenerating)

	systemPrompt := c.buildPrompt(extraInstruction)
	history := c.historyMessages()
	timeout := c.deps.GenerationTimeout

	c.deps.Observers.Broadcast(c.sessionID(), statusEvent("thinking"))

	go func() {
		genCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		result, err := c.deps.LLM(genCtx, systemPrompt, history, nil)
		if err != nil {
			c.push(Event{Kind: EvtGenerationDone, Intent: intent, Err: err, epoch: epoch})
			return
		}
		c.push(Event{Kind: EvtGenerationDone, Intent: intent, Text: result.Text, epoch: epoch})
	}()
}

func (c *call) buildPrompt(extraInstruction string) string {
	c.sess.Lock()
	in := promptInputsFromIdentity(c.sess.Identity)
	sentimentLabel := c.sess.Sentiment.Label
	bargeIns := c.sess.Counters.BargeInCount
	c.sess.Unlock()

	base := prompts.Build(in, time.Now())
	augmented := prompts.Augment(base, sentimentLabel, bargeIns)
	if extraInstruction != "" {
		augmented += "\n\n" + extraInstruction
	}
	return prompts.ForSession(augmented)
}

func promptInputsFromIdentity(id session.Identity) prompts.Inputs {
	return prompts.Inputs{
		AgentName:         "Michael",
		OperatorCompany:   id.Company,
		Selling:           id.Selling,
		Tone:              id.Tone,
		ProspectFirstName: id.FirstName,
		ProspectLastName:  id.LastName,
		Industry:          id.Industry,
		TargetRole:        id.TargetRole,
		ValueProps:        id.ValueProps,
		CommonObjections:  id.CommonObjections,
		AdditionalContext: id.AdditionalContext,
	}
}

func (c *call) historyMessages() []pipeline.Message {
	c.sess.Lock()
	defer c.sess.Unlock()

	messages := make([]pipeline.Message, 0, len(c.sess.History))
	for _, turn := range c.sess.History {
		role := pipeline.RoleUser
		if turn.Role == session.RoleAssistant {
			role = pipeline.RoleAssistant
		}
		messages = append(messages, pipeline.Message{Role: role, Content: turn.Text})
	}
	return messages
}

// speak synthesizes text to µ-law frames and streams them in the
// background, honoring the session's active cancel token so a barge-in can
// interrupt mid-stream. The call loop never blocks on the network or the
// frame-send pacing; completion is posted back as EvtSpeechDone.
func (c *call) speak(ctx context.Context, text string, intent Intent) {
	if pipeline.IsWhitespaceOnly(text) {
		c.push(Event{Kind: EvtSpeechDone, Intent: intent})
		return
	}

	token := session.NewCancelToken()
	c.sess.Lock()
	c.sess.Flags.Speaking = true
	c.sess.ActiveSendCancel = token
	c.sess.Unlock()
	c.setState(StateSpeaking)
	c.bargeInTriggered = false

	c.deps.Observers.Broadcast(c.sessionID(), statusEvent("speaking"))

	go func() {
		result, err := c.deps.TTS.Synthesize(ctx, text)
		if err != nil {
			logErr(c.sessionID(), "tts_synthesize", err)
			c.push(Event{Kind: EvtSpeechDone, Intent: intent, Err: err})
			return
		}
		if result == nil {
			c.push(Event{Kind: EvtSpeechDone, Intent: intent})
			return
		}

		canceled := false
		sent := 0
		for _, frame := range result.Frames {
			if token.IsCanceled() {
				canceled = true
				break
			}
			payload := base64.StdEncoding.EncodeToString(frame)
			if err := c.channel.SendFrame(ctx, payload); err != nil {
				logErr(c.sessionID(), "send_frame", err)
				break
			}
			sent++
		}

		c.push(Event{Kind: EvtSpeechDone, Intent: intent, Frames: sent, Canceled: canceled})
	}()
}
