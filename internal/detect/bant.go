package detect

import "strings"

var budgetPatterns = []string{
	"budget", "afford", "cost", "pricing", "price range", "spend",
}

var authorityPatterns = []string{
	"decision maker", "i decide", "my boss", "need approval", "report to",
	"the owner", "ceo", "i'm in charge", "im in charge",
}

var needPatterns = []string{
	"we need", "we're looking for", "were looking for", "pain point",
	"struggling with", "problem with", "looking to improve",
}

var timelinePatterns = []string{
	"this quarter", "by the end of", "next month", "timeline", "when can we start",
	"how soon", "right away", "asap",
}

// BANTSignal reports which of the four independent qualification channels
// the utterance touches. Each channel is evaluated from its own pattern
// family — an utterance can set more than one at once.
func BANTSignal(utterance string) (budget, authority, need, timeline bool) {
	lower := strings.ToLower(utterance)
	budget = containsAny(lower, budgetPatterns)
	authority = containsAny(lower, authorityPatterns)
	need = containsAny(lower, needPatterns)
	timeline = containsAny(lower, timelinePatterns)
	return
}

func containsAny(lower string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
