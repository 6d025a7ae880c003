package detect

import "strings"

var objectionPatterns = []string{
	"not interested",
	"too expensive",
	"no budget",
	"send me an email",
	"how did you get",
	"already have a solution",
	"already working with",
	"not the right time",
	"need to think about it",
	"talk to my team",
}

// Objection reports whether the utterance contains a recognized
// sales-pushback pattern. Callers increment their own counter on true —
// this function stays a pure predicate rather than owning any counter.
func Objection(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, pattern := range objectionPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
