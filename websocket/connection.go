// Package websocket carries browser events to a page and DOM patches back.
// file: websocket/connection.go
package websocket

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"ctf-catalog/logger"
	"ctf-catalog/page"
	"github.com/gorilla/websocket"
)

// WSConn is an interface for the WebSocket connection.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

var (
	// ErrConnectionClosed is returned when patches are sent after the socket closed.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrSendBufferFull is returned when the browser is not keeping up.
	ErrSendBufferFull = errors.New("send buffer full")
)

// PatchMessage is the JSON frame sent to the browser.
type PatchMessage struct {
	Patches []page.Patch `json:"patches"`
}

// Poster receives decoded browser events; *page.View implements it.
type Poster interface {
	Post(ev page.Event) error
}

// Connection is the socket of one open page. It is the page's patch sink.
type Connection struct {
	conn   WSConn
	send   chan []byte
	target Poster
	closed chan struct{}
	once   sync.Once
}

func newConnection(conn WSConn, target Poster) *Connection {
	return &Connection{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		target: target,
		closed: make(chan struct{}),
	}
}

// SendPatches queues one frame. It never blocks the page loop.
func (c *Connection) SendPatches(patches []page.Patch) error {
	data, err := json.Marshal(PatchMessage{Patches: patches})
	if err != nil {
		return err
	}
	select {
	case <-c.closed:
		return ErrConnectionClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.closed:
		return ErrConnectionClosed
	default:
		logger.Warn.Printf("[SendPatches] Dropping frame for %v: buffer full", c.conn.RemoteAddr())
		return ErrSendBufferFull
	}
}

func (c *Connection) close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

// readPump decodes browser events and posts them to the page.
func (c *Connection) readPump(onClose func()) {
	defer func() {
		if onClose != nil {
			onClose()
		}
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Debug.Printf("[readPump] Read ended for %v: %v", c.conn.RemoteAddr(), err)
			return
		}
		if messageType != websocket.TextMessage {
			logger.Debug.Printf("[readPump] Ignoring non-text messageType=%d", messageType)
			continue
		}

		var ev page.Event
		if err := json.Unmarshal(message, &ev); err != nil {
			logger.Warn.Printf("[readPump] Invalid JSON from %v: %v", c.conn.RemoteAddr(), err)
			continue
		}
		if err := c.target.Post(ev); err != nil {
			logger.Info.Printf("[readPump] Page gone for %v: %v", c.conn.RemoteAddr(), err)
			return
		}
	}
}

// writePump sends queued frames and periodic pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.closed:
			return

		case message := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn.Printf("[writePump] Error writing to %v: %v", c.conn.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn.Printf("[writePump] Ping error for %v: %v", c.conn.RemoteAddr(), err)
				return
			}
		}
	}
}
