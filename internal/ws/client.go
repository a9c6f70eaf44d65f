package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"coinflip3d/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	sendBuffer    = 256
	controlBuffer = 64
	maxReadBytes  = 4096
)

// Client is one websocket connection. It owns the pumps; the flip itself
// lives in its Session.
type Client struct {
	PlayerID int64
	Conn     *websocket.Conn
	// Send carries frames; control carries everything else and is always
	// written first.
	Send    chan []byte
	control chan []byte

	Hub     *Hub
	Session *Session
	Done    chan struct{}

	log       *slog.Logger
	closeOnce sync.Once
	closed    chan struct{}
}

func NewClient(playerID int64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		PlayerID: playerID,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		control:  make(chan []byte, controlBuffer),
		Hub:      hub,
		Done:     make(chan struct{}),
		log:      logger.With("player_id", playerID),
		closed:   make(chan struct{}),
	}
}

// Run registers the session and blocks until the connection drops.
func (c *Client) Run() {
	c.Session = c.Hub.Open(c)
	c.log = c.log.With("session", c.Session.ID)
	c.log.Info("Client.Run: session opened")

	go c.writePump()
	go c.readPump()
	c.Session.Start()

	<-c.Done
	c.log.Info("Client.Run: session closed")
}

func (c *Client) readPump() {
	defer func() {
		c.disconnect()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(maxReadBytes)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Client.readPump: read error", "error", err)
			}
			return
		}
		c.Session.HandleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	write := func(msg []byte) bool {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.log.Warn("Client.writePump: write error", "error", err)
			return false
		}
		return true
	}

	for {
		// control messages jump the frame queue
		select {
		case msg := <-c.control:
			if !write(msg) {
				return
			}
			continue
		default:
		}

		select {
		case msg := <-c.control:
			if !write(msg) {
				return
			}

		case msg := <-c.Send:
			if !write(msg) {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// trySend queues msg without blocking. Frames go through here: a slow
// client misses frames rather than stalling the loop.
func (c *Client) trySend(msg []byte) bool {
	select {
	case <-c.closed:
		return false
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// sendControl queues a message the client must not miss. It never waits
// behind frames; it only fails if the control queue itself is full, which
// means the client stopped reading altogether.
func (c *Client) sendControl(msg []byte) bool {
	select {
	case <-c.closed:
		return false
	case c.control <- msg:
		return true
	default:
		c.log.Warn("Client.sendControl: control queue full, message dropped")
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

func (c *Client) disconnect() {
	c.close()
	if c.Session != nil {
		c.Hub.Close(c.Session)
	}
	_ = c.Conn.Close()
}
