// Package telephony places outbound calls and runs the bidirectional
// media-stream channel that carries call audio to and from the carrier.
package telephony

import (
	"fmt"
	"html"
)

// BuildMediaStreamTwiML returns the directive that opens a bidirectional
// media stream against wsURL, stamping the session id as a custom parameter
// the carrier echoes back in its "start" event. A long pause follows so the
// carrier does not hang up while the stream is live.
func BuildMediaStreamTwiML(wsURL, sessionID string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Response>
    <Connect>
        <Stream url="%s">
            <Parameter name="sessionId" value="%s"/>
        </Stream>
    </Connect>
    <Pause length="3600"/>
</Response>`, html.EscapeString(wsURL), html.EscapeString(sessionID))
}

// BuildErrorHangupTwiML returns a directive that speaks a short apology and
// hangs up, used when the answer webhook resolves to an unknown session.
func BuildErrorHangupTwiML(message string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Response>
    <Say>%s</Say>
    <Hangup/>
</Response>`, html.EscapeString(message))
}
