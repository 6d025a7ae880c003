package control

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/coldcall/callengine/internal/observer"
	"github.com/coldcall/callengine/internal/telephony"
	"github.com/coldcall/callengine/internal/ttscache"
)

// handleMediaStream upgrades the carrier's bidirectional audio socket and
// hands it to the orchestrator, which owns the call for as long as the
// socket stays open (§5).
func handleMediaStream(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.PathValue("sessionId")
		sess := d.Sessions.Get(sessionID)
		if sess == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		channel, mediaEvents, err := telephony.ServeMediaStream(w, r)
		if err != nil {
			return
		}

		d.Orchestrator.HandleMediaStream(r.Context(), sess, channel, mediaEvents)
	}
}

// handleTranscriptStream upgrades the observer relay socket for one session,
// seeding it with the session's current transcript and status.
func handleTranscriptStream(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.PathValue("sessionId")
		sess := d.Sessions.Get(sessionID)
		if sess == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		sess.Lock()
		snapshot := observer.SessionSnapshot{
			Status:       string(sess.Status),
			Transcript:   transcriptLines(sess),
			MessageCount: len(sess.History),
		}
		sess.Unlock()

		observer.Serve(w, r, d.Observers, sessionID, snapshot)
	}
}

// handleVoicePreview synthesizes one of the warm-cache phrases so an
// operator can sample the configured voice before placing real calls. The
// bytes written are mu-law frames, not true MPEG; the content type matches
// the wire contract's documented shape rather than the actual codec, a
// deliberate shortcut noted in DESIGN.md.
func handleVoicePreview(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index := 0
		if raw := r.URL.Query().Get("index"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				index = parsed
			}
		}
		phrases := ttscache.WarmPhrases
		if len(phrases) == 0 {
			writeJSONError(w, http.StatusServiceUnavailable, "no preview phrases configured")
			return
		}
		phrase := phrases[((index%len(phrases))+len(phrases))%len(phrases)]

		result, err := d.TTS.Synthesize(r.Context(), phrase)
		if err != nil || result == nil {
			writeJSONError(w, http.StatusBadGateway, "voice synthesis failed")
			return
		}

		var buf bytes.Buffer
		for _, frame := range result.Frames {
			buf.Write(frame)
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(buf.Bytes())
	}
}
