package orchestrator

import "github.com/coldcall/callengine/internal/observer"

// The builders below are the only place orchestrator code constructs an
// observer.Event, keeping the wire shape for each type (§6) in one spot.

func statusEvent(value string) observer.Event {
	return observer.Event{Type: "status", Value: value}
}

func interimEvent(text string) observer.Event {
	return observer.Event{Type: "user_speech_interim", Text: text}
}

func userSpeechEvent(text string) observer.Event {
	return observer.Event{Type: "user_speech", Text: text, Final: true}
}

func assistantSpeechEvent(text string) observer.Event {
	return observer.Event{Type: "michael_speech", Text: text, Final: true}
}

func sentimentEvent(score float64, label string) observer.Event {
	return observer.Event{Type: "sentiment_update", Score: score, Label: label}
}

func bargeInEvent(count int) observer.Event {
	return observer.Event{Type: "barge_in", Count: count}
}

func simpleEvent(eventType string) observer.Event {
	return observer.Event{Type: eventType}
}

func voicemailEvent(answeredBy string) observer.Event {
	return observer.Event{Type: "voicemail_detected", AnsweredBy: answeredBy}
}

func languageEvent(language string) observer.Event {
	return observer.Event{Type: "language_detected", Language: language}
}

func meetingBookedEvent(message string) observer.Event {
	return observer.Event{Type: "meeting_booked", Message: message}
}

func errorEvent(message string) observer.Event {
	return observer.Event{Type: "error", Message: message}
}
