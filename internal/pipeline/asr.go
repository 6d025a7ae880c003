package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coldcall/callengine/internal/metrics"
)

// TurnStatus is the end-of-turn heuristic classification of an ASR final.
type TurnStatus string

const (
	TurnComplete   TurnStatus = "complete"
	TurnMidThought TurnStatus = "mid-thought"
	TurnAmbiguous  TurnStatus = "ambiguous"
)

// EventKind distinguishes the three ASR event shapes.
type EventKind string

const (
	EventInterim      EventKind = "interim"
	EventFinal        EventKind = "final"
	EventUtteranceEnd EventKind = "utterance_end"
)

// ASREvent is one message from a streaming ASR session.
type ASREvent struct {
	Kind             EventKind
	Text             string
	DetectedLanguage string
	Confidence       float64
	TurnStatus       TurnStatus
}

var sentenceEnders = []string{".", "!", "?"}

var shortAffirmatives = map[string]bool{
	"yeah": true, "yep": true, "sure": true, "ok": true, "okay": true,
	"bye": true, "goodbye": true, "what do you think": true,
}

var conjunctionEndings = []string{"and", "but", "so", "because", "or"}

var hedgePhrases = []string{"i think", "you know", "like", "honestly", "actually"}

var cliffhangerPhrases = []string{"i was thinking", "the thing is", "let me just"}

// ClassifyTurnStatus applies the spec's end-of-turn heuristic to a final ASR
// fragment. It is a pure, local function over the fragment text, patterned
// after a fixed-list lookup rather than a generic classifier — matching the
// noise/pattern-matching style used elsewhere for ASR post-processing.
func ClassifyTurnStatus(text string) TurnStatus {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	words := strings.Fields(lower)

	if trimmed == "" {
		return TurnAmbiguous
	}

	last := trimmed[len(trimmed)-1:]
	for _, p := range sentenceEnders {
		if last == p {
			return TurnComplete
		}
	}
	if shortAffirmatives[strings.Trim(lower, ".,!? ")] {
		return TurnComplete
	}
	if len(words) <= 3 {
		return TurnComplete
	}

	if len(words) > 0 {
		lastWord := strings.Trim(words[len(words)-1], ".,!?")
		for _, c := range conjunctionEndings {
			if lastWord == c {
				return TurnMidThought
			}
		}
	}
	if last == "," {
		return TurnMidThought
	}
	for _, h := range hedgePhrases {
		if strings.Contains(lower, h) {
			return TurnMidThought
		}
	}
	for _, c := range cliffhangerPhrases {
		if strings.Contains(lower, c) {
			return TurnMidThought
		}
	}

	return TurnAmbiguous
}

// TurnTimerDuration maps a turn status to the timer the orchestrator should
// (re)arm before dispatching the accumulated turn buffer.
func TurnTimerDuration(status TurnStatus) time.Duration {
	switch status {
	case TurnComplete:
		return 300 * time.Millisecond
	case TurnMidThought:
		return 1500 * time.Millisecond
	default:
		return 600 * time.Millisecond
	}
}

// IsWhitespaceOnly reports whether a final fragment carries no dispatchable
// content, per the spec's boundary behavior that such finals are dropped.
func IsWhitespaceOnly(text string) bool {
	return strings.TrimSpace(text) == ""
}

// ASRConfig is the fixed session configuration the orchestrator opens every
// streaming ASR connection with.
type ASRConfig struct {
	SampleRate         int
	InterimResults     bool
	SmartFormat        bool
	UtteranceEndMs     int
	EndpointingMs      int
	FillerWords        bool
	Punctuate          bool
}

// DefaultASRConfig matches §4.3's fixed session parameters.
func DefaultASRConfig() ASRConfig {
	return ASRConfig{
		SampleRate:     8000,
		InterimResults: true,
		SmartFormat:    true,
		UtteranceEndMs: 1200,
		EndpointingMs:  400,
		FillerWords:    true,
		Punctuate:      true,
	}
}

// ASRAdapter opens one streaming connection per call.
type ASRAdapter interface {
	Connect(ctx context.Context, cfg ASRConfig) (*ASRSession, error)
}

// ASRSession is a single call's live streaming ASR connection: audio frames
// go in, interim/final/utterance-end events come out on Events().
type ASRSession struct {
	conn   *websocket.Conn
	events chan ASREvent

	mu     sync.Mutex
	closed bool
}

// Events returns the channel of ASR events for this session. Closed when
// the underlying connection ends.
func (s *ASRSession) Events() <-chan ASREvent {
	return s.events
}

// SendAudio writes one mu-law frame to the ASR connection.
func (s *ASRSession) SendAudio(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("asr session closed")
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		metrics.Errors.WithLabelValues("asr", "send").Inc()
		return fmt.Errorf("send asr audio: %w", err)
	}
	return nil
}

// Close ends the session, safe to call more than once.
func (s *ASRSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

// StreamingASRClient connects to a Deepgram-compatible realtime transcription
// endpoint: query-string configuration, binary audio frames in, newline-JSON
// transcript events out. Most hosted streaming ASR vendors expose this exact
// shape, which is why the ASR Adapter targets it directly rather than a
// vendor SDK.
type StreamingASRClient struct {
	apiKey string
	url    string
}

// NewStreamingASRClient creates a client for a realtime ASR websocket endpoint.
func NewStreamingASRClient(apiKey, wsURL string) *StreamingASRClient {
	return &StreamingASRClient{apiKey: apiKey, url: wsURL}
}

// Connect opens the streaming session for one call.
func (c *StreamingASRClient) Connect(ctx context.Context, cfg ASRConfig) (*ASRSession, error) {
	start := time.Now()

	q := url.Values{}
	q.Set("encoding", "mulaw")
	q.Set("sample_rate", strconv.Itoa(cfg.SampleRate))
	q.Set("channels", "1")
	q.Set("interim_results", strconv.FormatBool(cfg.InterimResults))
	q.Set("smart_format", strconv.FormatBool(cfg.SmartFormat))
	q.Set("punctuate", strconv.FormatBool(cfg.Punctuate))
	q.Set("filler_words", strconv.FormatBool(cfg.FillerWords))
	q.Set("utterance_end_ms", strconv.Itoa(cfg.UtteranceEndMs))
	q.Set("endpointing", strconv.Itoa(cfg.EndpointingMs))

	dialURL := c.url + "?" + q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Token "+c.apiKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, dialURL, header)
	if err != nil {
		metrics.Errors.WithLabelValues("asr", "connect").Inc()
		return nil, fmt.Errorf("connect asr stream: %w", err)
	}
	metrics.StageDuration.WithLabelValues("asr").Observe(time.Since(start).Seconds())

	session := &ASRSession{conn: conn, events: make(chan ASREvent, 16)}
	go session.readLoop()
	return session, nil
}

func (s *ASRSession) readLoop() {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		event, ok := parseASRMessage(data)
		if !ok {
			continue
		}
		s.events <- event
	}
}

type asrWireMessage struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
	Language string `json:"detected_language"`
}

func parseASRMessage(data []byte) (ASREvent, bool) {
	var msg asrWireMessage
	if json.Unmarshal(data, &msg) != nil {
		return ASREvent{}, false
	}

	if msg.Type == "UtteranceEnd" {
		return ASREvent{Kind: EventUtteranceEnd}, true
	}

	if len(msg.Channel.Alternatives) == 0 {
		return ASREvent{}, false
	}
	text := msg.Channel.Alternatives[0].Transcript
	if text == "" {
		return ASREvent{}, false
	}

	if !msg.IsFinal {
		return ASREvent{Kind: EventInterim, Text: text}, true
	}

	if IsWhitespaceOnly(text) {
		metrics.ASRNoiseFiltered.Inc()
		return ASREvent{}, false
	}

	return ASREvent{
		Kind:             EventFinal,
		Text:             text,
		Confidence:       msg.Channel.Alternatives[0].Confidence,
		DetectedLanguage: msg.Language,
		TurnStatus:       ClassifyTurnStatus(text),
	}, true
}
