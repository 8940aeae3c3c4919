package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub routes auth events to the sockets of the user they concern.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]bool)}
}

// Broadcast delivers the event to every connection owned by event.UserID.
func (h *Hub) Broadcast(event Message) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WARN] failed to encode ws event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.userID != event.UserID {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// Slow consumer; drop the event rather than block the hub.
		}
	}
}

// ServeWS upgrades the request and keeps the socket open for pushed events.
// The caller has already authenticated userID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed for user %s: %v", userID, err)
		return
	}

	c := &client{userID: userID, conn: conn, send: make(chan []byte, 8)}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) writePump(c *client) {
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			break
		}
	}
	_ = c.conn.Close()
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		close(c.send)
		_ = c.conn.Close()
	}()

	// Clients never send application data; the read loop just detects closes.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
