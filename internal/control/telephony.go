package control

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/coldcall/callengine/internal/session"
	"github.com/coldcall/callengine/internal/telephony"
)

// handleWebhook is the telephony answer callback: it resolves the session
// and returns the directive that opens the bidirectional media stream.
// Unknown sessions get a directive that apologizes and hangs up rather than
// an HTTP error, since the carrier only understands TwiML here.
func handleWebhook(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.PathValue("sessionId")
		sess := d.Sessions.Get(sessionID)

		w.Header().Set("Content-Type", "text/xml")

		if sess == nil {
			w.Write([]byte(telephony.BuildErrorHangupTwiML("Sorry, something went wrong with this call.")))
			return
		}

		d.Observers.Broadcast(sessionID, statusEventValue("connected"))

		wsURL := fmt.Sprintf("wss://%s/call/media/%s", d.PublicHost, sessionID)
		w.Write([]byte(telephony.BuildMediaStreamTwiML(wsURL, sessionID)))
	}
}

// handleStatus applies a carrier call-status update to the session and, on
// a terminal status, broadcasts call_ended and starts the purge grace.
func handleStatus(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.PathValue("sessionId")
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		callStatus := r.FormValue("CallStatus")
		duration, _ := strconv.ParseFloat(r.FormValue("CallDuration"), 64)

		sess := d.Sessions.Get(sessionID)
		if sess == nil {
			w.WriteHeader(http.StatusOK)
			return
		}

		newStatus, terminal := mapTelephonyStatus(callStatus)

		sess.Lock()
		sess.Status = newStatus
		sess.DurationSeconds = duration
		if terminal {
			sess.EndReason = callStatus
		}
		sess.Unlock()

		d.Orchestrator.NotifyTelephonyStatus(sessionID, callStatus, duration)

		if terminal {
			sess.Lock()
			ev := callEndedEvent(callStatus, duration, transcriptLines(sess), scoringSnapshot(sess))
			sess.Unlock()
			d.Observers.Broadcast(sessionID, ev)
			d.Sessions.SchedulePurge(sessionID)
		}

		w.WriteHeader(http.StatusOK)
	}
}

// handleAMD forwards an answering-machine-detection result to the active
// call's orchestrator loop; a result that arrives before the media stream
// connects is logged and dropped by NotifyAMD itself.
func handleAMD(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.PathValue("sessionId")
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		answeredBy := r.FormValue("AnsweredBy")
		d.Orchestrator.NotifyAMD(sessionID, answeredBy)
		w.WriteHeader(http.StatusOK)
	}
}

func mapTelephonyStatus(callStatus string) (session.Status, bool) {
	switch strings.ToLower(callStatus) {
	case "completed":
		return session.StatusCompleted, true
	case "busy":
		return session.StatusBusy, true
	case "no-answer":
		return session.StatusNoAnswer, true
	case "canceled":
		return session.StatusCanceled, true
	case "failed":
		return session.StatusFailed, true
	case "ringing":
		return session.StatusRinging, false
	default:
		return session.StatusConnected, false
	}
}
