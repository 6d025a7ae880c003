package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coldcall/callengine/internal/metrics"
)

// MediaEventKind distinguishes the four inbound media-stream event shapes.
type MediaEventKind string

const (
	MediaConnected MediaEventKind = "connected"
	MediaStart     MediaEventKind = "start"
	MediaFrame     MediaEventKind = "media"
	MediaStop      MediaEventKind = "stop"
)

// MediaEvent is one inbound event from the carrier's media-stream channel.
type MediaEvent struct {
	Kind      MediaEventKind
	StreamSid string
	Payload   string // base64 mu-law, only set for MediaFrame
}

type inboundEnvelope struct {
	Event string `json:"event"`
	Start struct {
		StreamSid string `json:"streamSid"`
	} `json:"start"`
	Media struct {
		Payload string `json:"payload"`
	} `json:"media"`
}

// framesPerYield is how many frames the channel sends before cooperatively
// yielding, so heartbeats sharing the connection are never starved.
const framesPerYield = 50

// yieldDuration is how long the channel pauses after framesPerYield sends.
const yieldDuration = 20 * time.Millisecond

// Channel is one call's live bidirectional media-stream connection.
// SendFrame and ClearPlayback are the only legitimate ways to produce
// outbound audio; closing the connection is never used for interruption
// because the stream must survive for the next response.
type Channel struct {
	conn *websocket.Conn

	mu               sync.Mutex
	streamSid        string
	framesSinceYield int
}

// StreamSid returns the carrier-assigned stream id, set once the start
// event has been observed.
func (c *Channel) StreamSid() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streamSid
}

type outboundMedia struct {
	Event     string             `json:"event"`
	StreamSid string             `json:"streamSid"`
	Media     outboundMediaInner `json:"media"`
}

type outboundMediaInner struct {
	Payload string `json:"payload"`
}

type outboundClear struct {
	Event     string `json:"event"`
	StreamSid string `json:"streamSid"`
}

// SendFrame writes one base64-encoded mu-law frame to the carrier. After
// every framesPerYield frames sent on the channel it pauses for
// yieldDuration before returning, so other sessions sharing the process get
// scheduled fairly.
func (c *Channel) SendFrame(ctx context.Context, payloadB64 string) error {
	c.mu.Lock()
	streamSid := c.streamSid
	msg := outboundMedia{Event: "media", StreamSid: streamSid, Media: outboundMediaInner{Payload: payloadB64}}
	err := c.conn.WriteJSON(msg)
	if err == nil {
		metrics.AudioFramesSent.Inc()
		c.framesSinceYield++
	}
	shouldYield := c.framesSinceYield >= framesPerYield
	if shouldYield {
		c.framesSinceYield = 0
	}
	c.mu.Unlock()

	if err != nil {
		metrics.Errors.WithLabelValues("telephony", "send_frame").Inc()
		return fmt.Errorf("send media frame: %w", err)
	}

	if shouldYield {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(yieldDuration):
		}
	}
	return nil
}

// ClearPlayback sends a clear control frame, discarding any audio the
// carrier has buffered but not yet played — the barge-in interrupt primitive.
func (c *Channel) ClearPlayback() error {
	c.mu.Lock()
	streamSid := c.streamSid
	err := c.conn.WriteJSON(outboundClear{Event: "clear", StreamSid: streamSid})
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("clear playback: %w", err)
	}
	return nil
}

// Close ends the underlying connection. Only used on call teardown, never
// as an interruption mechanism.
func (c *Channel) Close() error {
	return c.conn.Close()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// ServeMediaStream upgrades an HTTP request to the bidirectional media
// channel and begins relaying inbound events on the returned channel. The
// caller owns draining events until it closes (or the remote does).
func ServeMediaStream(w http.ResponseWriter, r *http.Request) (*Channel, <-chan MediaEvent, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("upgrade media stream: %w", err)
	}

	channel := &Channel{conn: conn}
	events := make(chan MediaEvent, 64)

	go readLoop(channel, conn, events)

	return channel, events, nil
}

func readLoop(channel *Channel, conn *websocket.Conn, events chan<- MediaEvent) {
	defer close(events)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var env inboundEnvelope
		if json.Unmarshal(data, &env) != nil {
			continue
		}

		switch MediaEventKind(env.Event) {
		case MediaConnected:
			events <- MediaEvent{Kind: MediaConnected}
		case MediaStart:
			channel.mu.Lock()
			channel.streamSid = env.Start.StreamSid
			channel.mu.Unlock()
			events <- MediaEvent{Kind: MediaStart, StreamSid: env.Start.StreamSid}
		case MediaFrame:
			metrics.AudioFramesReceived.Inc()
			events <- MediaEvent{Kind: MediaFrame, Payload: env.Media.Payload}
		case MediaStop:
			events <- MediaEvent{Kind: MediaStop}
			return
		}
	}
}
