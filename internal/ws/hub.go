package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go-storefront/internal/events"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Conn is the part of a websocket connection the hub writes to
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Hub struct {
	Clients    map[Conn]bool
	Register   chan Conn
	Unregister chan Conn
	Broadcast  chan []byte
	done       chan struct{}
	mutex      sync.Mutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		Clients:    make(map[Conn]bool),
		Register:   make(chan Conn),
		Unregister: make(chan Conn),
		Broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		log:        log.Named("ws"),
	}
}

// Run owns the client set until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			n := len(h.Clients)
			h.mutex.Unlock()
			h.log.Debug("client connected", zap.Int("clients", n))

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// ClientCount reports the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Publish queues the envelope for every connected client. A full queue drops the event.
func (h *Hub) Publish(_ context.Context, env events.Envelope) {
	msg, err := json.Marshal(env)
	if err != nil {
		h.log.Warn("encode event", zap.String("event_type", env.EventType), zap.Error(err))
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		h.log.Warn("broadcast queue full, dropping event", zap.String("event_type", env.EventType))
	}
}

// Serve registers the connection and blocks until the client goes away
func (h *Hub) Serve(c *websocket.Conn) {
	if !h.join(c) {
		return
	}
	defer h.leave(c)

	for {
		// Keep alive loop
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

// join hands the connection to Run; once Run has stopped the connection is closed instead
func (h *Hub) join(c Conn) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		c.Close()
		return false
	}
}

func (h *Hub) leave(c Conn) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}
