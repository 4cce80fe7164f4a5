package main

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256
	binaryMarker   = 0xFF
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	limiter    *ConnLimiter
	log        *zap.Logger

	// owned by the hub goroutine
	roomID   string
	playerID string
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
		limiter:    hub.guard.NewConnLimiter(),
		log:        hub.log.With(zap.String("ip", remoteAddr)),
	}
}

// ReadPump reads messages from the WebSocket connection. It only decodes and
// enqueues; all game state changes happen on the hub goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.guard.Release(c.remoteAddr)
		c.hub.enqueue(unregisterCmd{c})
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("ws read error", zap.Error(err))
			}
			break
		}

		ok, violation := c.limiter.Allow(time.Now())
		if !ok {
			if violation {
				c.log.Warn("rate limit exceeded")
				c.hub.stats.violations.Add(1)
				if c.hub.guard.RecordViolation(c.remoteAddr) {
					c.hub.enqueue(kickCmd{ip: c.remoteAddr})
					break
				}
			}
			continue
		}

		if msgType != websocket.TextMessage {
			c.log.Debug("dropped non-text message")
			continue
		}
		var env InEnvelope
		if err := json.Unmarshal(message, &env); err != nil || env.T == "" {
			c.log.Debug("dropped malformed message", zap.Error(err))
			continue
		}
		c.hub.stats.messages.Add(1)
		c.hub.enqueue(messageCmd{client: c, env: env})
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == binaryMarker {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal error", zap.Error(err))
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
		c.hub.stats.dropped.Add(1)
	}
}

// SendBinary sends bytes as a binary WebSocket message. data is copied, so
// callers may reuse their buffer.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = binaryMarker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
		c.hub.stats.dropped.Add(1)
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}
