package detect

import "strings"

var gatekeeperPatterns = []string{
	"who's calling",
	"whos calling",
	"what's this regarding",
	"whats this regarding",
	"she's in a meeting",
	"shes in a meeting",
	"he's in a meeting",
	"hes in a meeting",
	"she's not available",
	"he's not available",
	"let me transfer",
	"front desk",
	"can i take a message",
	"can i take a message for",
	"speaking to the receptionist",
}

var recognitionCues = []string{
	"speaking",
	"hi",
	"this is",
}

// Gatekeeper reports whether an utterance is characteristic of a receptionist
// or assistant screening the call rather than the prospect themselves.
func Gatekeeper(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, pattern := range gatekeeperPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// GatekeeperNavigated reports whether, after a gatekeeper has already been
// detected, a later utterance indicates the prospect has now picked up —
// their configured first name plus a recognition cue.
func GatekeeperNavigated(utterance, firstName string) bool {
	if firstName == "" {
		return false
	}
	lower := strings.ToLower(utterance)
	name := strings.ToLower(firstName)
	if !strings.Contains(lower, name) {
		return false
	}
	for _, cue := range recognitionCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}
