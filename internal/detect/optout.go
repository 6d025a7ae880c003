package detect

import "strings"

var optOutPatterns = []string{
	"stop calling",
	"take me off",
	"don't call",
	"dont call",
	"remove me",
	"do not call",
	"no more calls",
}

// OptOut reports whether the utterance requests the call end permanently.
// A standalone "stop" only counts at the very end of the utterance, so
// "stop, that's a great idea" does not false-positive but "please just
// stop" does.
func OptOut(utterance string) bool {
	lower := strings.ToLower(strings.TrimSpace(utterance))

	for _, pattern := range optOutPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	words := strings.Fields(lower)
	if len(words) > 0 && strings.Trim(words[len(words)-1], ".,!?") == "stop" {
		return true
	}

	return false
}
