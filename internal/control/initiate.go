package control

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/coldcall/callengine/internal/session"
	"github.com/coldcall/callengine/internal/telephony"
)

type initiateRequest struct {
	FirstName         string   `json:"firstName"`
	LastName          string   `json:"lastName"`
	Phone             string   `json:"phone"`
	Company           string   `json:"company"`
	Selling           string   `json:"selling"`
	Tone              string   `json:"tone"`
	Industry          string   `json:"industry"`
	TargetRole        string   `json:"targetRole"`
	ValueProps        []string `json:"valueProps"`
	CommonObjections  []string `json:"commonObjections"`
	AdditionalContext string   `json:"additionalContext"`
	Email             string   `json:"email"`
}

type initiateResponse struct {
	SessionID string `json:"sessionId"`
	CallSID   string `json:"callSid"`
	Status    string `json:"status"`
}

// handleInitiate creates a session and places the outbound call. Required
// fields per §6: firstName, phone, company, selling.
func handleInitiate(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req initiateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		if req.FirstName == "" || req.Phone == "" || req.Company == "" || req.Selling == "" {
			writeJSONError(w, http.StatusBadRequest, "firstName, phone, company, and selling are required")
			return
		}

		sessionID := uuid.NewString()
		sess := session.New(sessionID, session.Identity{
			FirstName:         req.FirstName,
			LastName:          req.LastName,
			Phone:             req.Phone,
			Company:           req.Company,
			Selling:           req.Selling,
			Tone:              req.Tone,
			Industry:          req.Industry,
			TargetRole:        req.TargetRole,
			ValueProps:        req.ValueProps,
			CommonObjections:  req.CommonObjections,
			AdditionalContext: req.AdditionalContext,
			Email:             req.Email,
		})
		sess.Status = session.StatusInitiating
		d.Sessions.Insert(sess)

		params := telephony.PlaceCallParams{
			Target:               req.Phone,
			AnswerURL:            fmt.Sprintf("https://%s/call/webhook/%s", d.PublicHost, sessionID),
			StatusURL:            fmt.Sprintf("https://%s/call/status/%s", d.PublicHost, sessionID),
			AMDURL:               fmt.Sprintf("https://%s/call/amd/%s", d.PublicHost, sessionID),
			TimeoutSeconds:       d.CallTimeoutSeconds,
			AsyncAMD:             true,
			MachineDetectionMode: "DetectMessageEnd",
		}

		callHandleID, err := d.Telephony.PlaceCall(r.Context(), params)
		if err != nil {
			d.Sessions.Delete(sessionID)
			writeJSONError(w, http.StatusInternalServerError, "call placement failed")
			return
		}

		sess.Lock()
		sess.CallHandleID = callHandleID
		sess.Status = session.StatusRinging
		sess.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(initiateResponse{
			SessionID: sessionID,
			CallSID:   callHandleID,
			Status:    "initiating",
		})
	}
}
