package detect

import "strings"

var callbackPatterns = []string{
	"call me back",
	"bad time",
	"busy",
	"driving",
	"in a meeting",
	"try again later",
	"call back later",
	"not a good time",
}

// CallbackResult is the outcome of the callback-request detector.
type CallbackResult struct {
	Requested bool
	// Time is the whole trimmed utterance when it contains a time anchor
	// (a clock time, day reference, or a loose time-of-day phrase); the
	// anchor itself is not extracted. Empty when no anchor was found even
	// if Requested is true.
	Time string
}

// Callback reports whether the utterance asks for a callback, and captures
// any time anchor present so the orchestrator can record it verbatim.
func Callback(utterance string) CallbackResult {
	lower := strings.ToLower(utterance)

	requested := false
	for _, pattern := range callbackPatterns {
		if strings.Contains(lower, pattern) {
			requested = true
			break
		}
	}
	if !requested {
		return CallbackResult{}
	}

	if TimeAnchor(utterance) || DayAnchor(utterance) || TimeOfDayPhrase(utterance) {
		return CallbackResult{Requested: true, Time: strings.TrimSpace(utterance)}
	}
	return CallbackResult{Requested: true}
}
