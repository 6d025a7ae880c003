package control

import (
	"time"

	"github.com/coldcall/callengine/internal/observer"
	"github.com/coldcall/callengine/internal/session"
)

// transcriptLines renders a session's transcript as the wire shape observers
// and the session-introspection endpoint both use. Caller must hold sess's
// lock.
func transcriptLines(sess *session.Session) []observer.TranscriptLine {
	lines := make([]observer.TranscriptLine, 0, len(sess.Transcript))
	for _, entry := range sess.Transcript {
		lines = append(lines, observer.TranscriptLine{
			Speaker:   entry.SpeakerLabel,
			Text:      entry.Text,
			Timestamp: entry.Timestamp.Format(time.RFC3339),
			Voicemail: entry.Voicemail,
		})
	}
	return lines
}

// scoringSnapshot renders a session's analytics counters for call_ended and
// introspection payloads. Caller must hold sess's lock.
func scoringSnapshot(sess *session.Session) *observer.Scoring {
	return &observer.Scoring{
		AssistantWordCount: sess.Counters.AssistantWordCount,
		ProspectWordCount:  sess.Counters.ProspectWordCount,
		BargeInCount:       sess.Counters.BargeInCount,
		ObjectionCount:     sess.Counters.ObjectionCount,
		BANTDepth:          sess.Counters.BANT.Depth(),
		SentimentScore:     sess.Sentiment.Score,
		SentimentLabel:     sess.Sentiment.Label,
		MeetingBooked:      sess.Flags.MeetingBooked,
		GatekeeperHit:      sess.Flags.Gatekeeper,
		OptOut:             sess.Flags.OptOut,
	}
}
