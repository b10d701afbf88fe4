package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client адаптер websocket.Conn к realtime.Conn.
// Send не блокирует: кадры ставятся в буфер, пишет их отдельная горутина writePump.
// Она же шлет ping; ответный pong продлевает жизнь соединения в реестре.
type client struct {
	ws           *websocket.Conn
	send         chan []byte
	writeTimeout time.Duration
	pingInterval time.Duration

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, sendBuffer int, writeTimeout, pingInterval time.Duration) *client {
	return &client{
		ws:           conn,
		send:         make(chan []byte, sendBuffer),
		writeTimeout: writeTimeout,
		pingInterval: pingInterval,
	}
}

func (c *client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close прекращает прием кадров; уже поставленные в очередь будут отправлены перед закрытием сокета
func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.send)
	return nil
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.writeClose()
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}

func (c *client) writeClose() {
	_ = c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(c.writeTimeout),
	)
}
