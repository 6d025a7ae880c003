package detect

import (
	"regexp"
	"strings"
)

var clockTimeRe = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
var hourAmPmRe = regexp.MustCompile(`\b\d{1,2}\s?(am|pm)\b`)

var weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

var months = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

var monthDayRe = regexp.MustCompile(`\b(` + strings.Join(months, "|") + `)\s+\d{1,2}(st|nd|rd|th)?\b`)

var dayOfTimePhrases = []string{
	"morning", "afternoon", "evening", "tonight", "tomorrow", "next week",
}

// TimeAnchor reports whether the text contains a specific clock time
// reference, e.g. "2:30" or "2 pm".
func TimeAnchor(text string) bool {
	lower := strings.ToLower(text)
	return clockTimeRe.MatchString(lower) || hourAmPmRe.MatchString(lower)
}

// DayAnchor reports whether the text contains a specific day reference: a
// weekday name, "tomorrow", "next <weekday>", or a month-and-day.
func DayAnchor(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "tomorrow") {
		return true
	}
	for _, wd := range weekdays {
		if strings.Contains(lower, wd) {
			return true
		}
		if strings.Contains(lower, "next "+wd) {
			return true
		}
	}
	return monthDayRe.MatchString(lower)
}

// TimeOfDayPhrase reports a loose, non-specific time reference — useful for
// callback-time capture where an exact anchor isn't required.
func TimeOfDayPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range dayOfTimePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
