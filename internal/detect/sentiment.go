// Package detect holds the deterministic, local, pattern-based classifiers
// run over prospect utterances. Every exported function here is pure: it
// takes an utterance (and, where noted, prior state) and returns a
// structured result with no I/O, so each one can be property-tested in
// isolation without a session or network fixture.
package detect

import "strings"

// weighted pattern families for the running sentiment score. Each pattern
// that appears in the utterance contributes its weight once.
var positivePatterns = map[string]float64{
	"sounds good":   2,
	"sounds great":  3,
	"i'm interested": 3,
	"im interested": 3,
	"love it":       3,
	"perfect":       2,
	"great":         1.5,
	"awesome":       2,
	"yes":           1,
	"sure":          1,
	"definitely":    2,
	"absolutely":    2,
	"thank you":     1,
	"thanks":        1,
}

var negativePatterns = map[string]float64{
	"not interested":  -3,
	"no thanks":       -2,
	"go away":         -4,
	"annoying":        -3,
	"stop calling":    -5,
	"waste of time":   -4,
	"scam":            -4,
	"harassment":      -5,
	"angry":           -3,
	"ridiculous":      -3,
	"frustrated":      -3,
	"don't call":      -5,
	"dont call":       -5,
	"leave me alone":  -4,
	"how did you get": -2,
}

// SentimentLabel derives the categorical label from a clamped score.
func SentimentLabel(score float64) string {
	switch {
	case score <= -6:
		return "hostile"
	case score <= -2:
		return "negative"
	case score <= 2:
		return "neutral"
	case score <= 6:
		return "positive"
	default:
		return "enthusiastic"
	}
}

// Sentiment applies one update of the running score given an utterance and
// the prior score, returning the new clamped score and its label.
// score ← clamp(score·0.85 + delta, −10, +10).
func Sentiment(utterance string, priorScore float64) (score float64, label string) {
	lower := strings.ToLower(utterance)
	delta := 0.0

	for pattern, weight := range positivePatterns {
		if strings.Contains(lower, pattern) {
			delta += weight
		}
	}
	for pattern, weight := range negativePatterns {
		if strings.Contains(lower, pattern) {
			delta += weight
		}
	}

	words := strings.Fields(lower)
	if delta == 0 {
		if len(words) <= 2 {
			delta = -0.5
		} else if len(words) > 20 {
			delta = 1
		}
	}

	score = priorScore*0.85 + delta
	score = clamp(score, -10, 10)
	return score, SentimentLabel(score)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
