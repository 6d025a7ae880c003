package control

import (
	"encoding/json"
	"net/http"
)

// handleSessionSnapshot answers an unauthenticated introspection query with
// the session's current status, transcript, and message count (§6).
func handleSessionSnapshot(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.PathValue("sessionId")
		sess := d.Sessions.Get(sessionID)
		if sess == nil {
			writeJSONError(w, http.StatusNotFound, "unknown session")
			return
		}

		sess.Lock()
		lines := transcriptLines(sess)
		resp := map[string]interface{}{
			"sessionId":       sessionID,
			"status":          string(sess.Status),
			"transcript":      lines,
			"messageCount":    len(sess.History),
			"durationSeconds": sess.DurationSeconds,
			"scoring":         scoringSnapshot(sess),
		}
		sess.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleHealth(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":         "ok",
			"pid":            d.Supervisor.PID(),
			"uptimeSeconds":  d.Supervisor.Uptime().Seconds(),
			"activeSessions": d.Sessions.Count(),
		})
	}
}
