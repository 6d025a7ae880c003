package detect

import "strings"

var schedulingPhrases = []string{
	"calendar invite",
	"i've got you down",
	"ive got you down",
	"pencil you in",
	"does that work",
	"i'll send over",
	"ill send over",
	"sounds like a plan",
}

var confirmationPhrases = []string{
	"sounds good",
	"works for me",
	"that works",
	"perfect",
	"great",
	"yes",
	"yeah",
	"sure",
	"book it",
	"let's do it",
	"lets do it",
}

var confirmationAnchors = []string{
	"work", "book", "perfect", "great",
}

// MeetingBooked evaluates the three required gates over the most recent
// (assistant, user) exchange. All three must pass — a specific day AND
// time anchor somewhere in the combined text, a prospect confirmation in
// the user's turn (a phrase from confirmationPhrases, or an affirmation
// word together with a work/book/perfect/great anchor word anywhere in the
// turn; word positions are not compared, so the two need not be adjacent),
// and a scheduling-language phrase in the assistant's turn. Missing any one
// gate yields false; this is the strict variant.
func MeetingBooked(assistantText, userText string) bool {
	combined := assistantText + " " + userText
	if !TimeAnchor(combined) || !DayAnchor(combined) {
		return false
	}

	if !hasConfirmation(userText) {
		return false
	}

	if !hasSchedulingPhrase(assistantText) {
		return false
	}

	return true
}

func hasConfirmation(userText string) bool {
	lower := strings.ToLower(userText)
	for _, phrase := range confirmationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	// an affirmation plus one of the anchor words anywhere in the turn also
	// counts (not checked for adjacency), e.g. "yeah that'll work"
	hasAffirmation := strings.Contains(lower, "yes") || strings.Contains(lower, "yeah") ||
		strings.Contains(lower, "sure") || strings.Contains(lower, "ok") || strings.Contains(lower, "okay")
	if !hasAffirmation {
		return false
	}
	for _, anchor := range confirmationAnchors {
		if strings.Contains(lower, anchor) {
			return true
		}
	}
	return false
}

func hasSchedulingPhrase(assistantText string) bool {
	lower := strings.ToLower(assistantText)
	for _, phrase := range schedulingPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
