// Package session holds the per-call state object and the process-global
// registry that tracks every active and recently-terminal call.
package session

import (
	"sync"
	"time"
)

// Status is the lifecycle status of a call.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInitiating Status = "initiating"
	StatusRinging    Status = "ringing"
	StatusConnected  Status = "connected"
	StatusCompleted  Status = "completed"
	StatusBusy       Status = "busy"
	StatusNoAnswer   Status = "no-answer"
	StatusCanceled   Status = "canceled"
	StatusFailed     Status = "failed"
)

// terminal reports whether a status ends the call's active lifetime.
func (s Status) terminal() bool {
	switch s {
	case StatusCompleted, StatusBusy, StatusNoAnswer, StatusCanceled, StatusFailed:
		return true
	default:
		return false
	}
}

// Role distinguishes the two parties in a turn.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Turn is one entry in the append-only conversation history.
type Turn struct {
	Role Role
	Text string
}

// TranscriptEntry is one display-facing line; it mirrors History but also
// carries non-LLM lines (voicemail playback) tagged accordingly.
type TranscriptEntry struct {
	SpeakerLabel string
	Text         string
	Timestamp    time.Time
	Voicemail    bool
}

// Flags is the per-session boolean state the orchestrator consults and
// flips; every field corresponds to one named flag in the data model.
type Flags struct {
	Speaking          bool
	OpeningSent       bool
	OpeningCooldown   bool
	Gatekeeper        bool
	GatekeeperNavigated bool
	Voicemail         bool
	VoicemailHandled  bool
	NonEnglish        bool
	CallbackRequested bool
	MeetingBooked     bool
	OptOut            bool
}

// BANT is the four-channel qualification checklist.
type BANT struct {
	Budget   bool
	Authority bool
	Need     bool
	Timeline bool
}

// Depth is the sum of the four independent BANT channels.
func (b BANT) Depth() int {
	depth := 0
	for _, set := range []bool{b.Budget, b.Authority, b.Need, b.Timeline} {
		if set {
			depth++
		}
	}
	return depth
}

// SentimentPoint is one entry in the running sentiment history.
type SentimentPoint struct {
	TurnIndex int
	Score     float64
	Label     string
}

// Counters holds the scoring state accumulated over the call.
type Counters struct {
	AssistantWordCount int
	ProspectWordCount  int
	BargeInCount       int
	ObjectionCount     int
	BANT               BANT
}

// Sentiment is the running numeric score plus its label history.
type Sentiment struct {
	Score   float64
	Label   string
	History []SentimentPoint
}

// CancelToken is the cooperative cancellation handle tied to one outbound
// audio send. Cancel is idempotent; IsCanceled is safe to poll from the
// frame-send loop between frames.
type CancelToken struct {
	mu       sync.Mutex
	canceled bool
	done     chan struct{}
}

// NewCancelToken creates an armed (not yet canceled) token.
func NewCancelToken() *CancelToken {
	return &CancelToken{done: make(chan struct{})}
}

// Cancel signals the token. Safe to call more than once or concurrently.
func (t *CancelToken) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.canceled {
		t.canceled = true
		close(t.done)
	}
}

// IsCanceled reports whether Cancel has been called.
func (t *CancelToken) IsCanceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canceled
}

// Done returns a channel closed when the token is canceled, for select loops.
func (t *CancelToken) Done() <-chan struct{} {
	return t.done
}

// Identity is the immutable configuration a session is created with.
type Identity struct {
	SessionID        string
	FirstName        string
	LastName         string
	Phone            string
	Company          string
	Selling          string
	Tone             string
	Industry         string
	TargetRole       string
	ValueProps       []string
	CommonObjections []string
	AdditionalContext string
	Email            string
}

// Session is the per-call state object described in the data model: one per
// active call. The orchestrator's call loop mutates most fields; the control
// plane's HTTP handlers also write the status, call-handle and end-of-call
// fields directly, not through the call loop. Those handlers and other
// readers outside the call loop use the session's own lock (Lock/Unlock),
// not Manager's.
type Session struct {
	mu sync.Mutex

	Identity Identity

	CallHandleID   string
	MediaStreamID  string
	Status         Status

	History    []Turn
	Transcript []TranscriptEntry

	Flags    Flags
	Counters Counters
	Sentiment Sentiment

	CreatedAt       time.Time
	ConnectedAt     time.Time
	DurationSeconds float64
	EndReason       string
	CallbackTime    string

	ActiveSendCancel *CancelToken

	purgeTimer *time.Timer
}

// New creates a fresh session in StatusPending.
func New(id string, identity Identity) *Session {
	identity.SessionID = id
	return &Session{
		Identity:  identity,
		Status:    StatusPending,
		CreatedAt: time.Now(),
		Sentiment: Sentiment{Label: "neutral"},
	}
}

// Lock/Unlock expose the session's mutex so the orchestrator's single
// consumer goroutine can serialize access with introspection reads that
// happen from other goroutines (HTTP handlers, observer connect).
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// AppendTurn appends an append-only history entry and the mirroring
// transcript line, updating word counts. Must be called with the session
// locked.
func (s *Session) AppendTurn(role Role, text string) {
	s.History = append(s.History, Turn{Role: role, Text: text})
	label := "You"
	if role == RoleAssistant {
		label = "Assistant"
	}
	s.Transcript = append(s.Transcript, TranscriptEntry{
		SpeakerLabel: label,
		Text:         text,
		Timestamp:    time.Now(),
	})
	count := wordCount(text)
	if role == RoleAssistant {
		s.Counters.AssistantWordCount += count
	} else {
		s.Counters.ProspectWordCount += count
	}
}

// AppendVoicemailLine appends a transcript-only entry (no history turn,
// since the voicemail is not a conversational exchange) tagged voicemail.
func (s *Session) AppendVoicemailLine(text string) {
	s.Transcript = append(s.Transcript, TranscriptEntry{
		SpeakerLabel: "Assistant",
		Text:         text,
		Timestamp:    time.Now(),
		Voicemail:    true,
	})
}

func wordCount(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if isSpace {
			inWord = false
			continue
		}
		if !inWord {
			count++
			inWord = true
		}
	}
	return count
}

// IsTerminal reports whether the session has reached a terminal status.
func (s *Session) IsTerminal() bool {
	return s.Status.terminal()
}

// UpdateSentiment records a new sentiment score (stored as given; the
// detector clamps it) with its label against the current history length as
// the turn index.
func (s *Session) UpdateSentiment(score float64, label string) {
	s.Sentiment.Score = score
	s.Sentiment.Label = label
	s.Sentiment.History = append(s.Sentiment.History, SentimentPoint{
		TurnIndex: len(s.History),
		Score:     score,
		Label:     label,
	})
}
