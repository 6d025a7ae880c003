package control

import "github.com/coldcall/callengine/internal/observer"

func statusEventValue(value string) observer.Event {
	return observer.Event{Type: "status", Value: value}
}

func callEndedEvent(reason string, duration float64, transcript []observer.TranscriptLine, scoring *observer.Scoring) observer.Event {
	return observer.Event{
		Type:       "call_ended",
		Reason:     reason,
		Duration:   duration,
		Transcript: transcript,
		Scoring:    scoring,
	}
}
