package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"token-pulse/internal/market"
	"token-pulse/internal/observability"
)

const (
	writeWait      = 10 * time.Second
	clientBuffer   = 16
	changesBuffer  = 64
	closeGraceWait = time.Second
)

// Hub pushes store changes to websocket clients. Each client has its own
// send buffer; a client that falls behind loses messages instead of
// stalling the others.
type Hub struct {
	store    *market.Store
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// NewHub creates a hub for the given store.
func NewHub(store *market.Store, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		store:    store,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   logger,
		clients:  make(map[string]*client),
	}
}

// Run forwards store changes to every client until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	changes, cancel := h.store.Subscribe(changesBuffer)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			h.Broadcast(c)
		}
	}
}

// Broadcast sends one change to every connected client.
func (h *Hub) Broadcast(c market.Change) {
	msg, err := json.Marshal(c)
	if err != nil {
		h.logger.Printf("failed to marshal change: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, cl := range h.clients {
		select {
		case cl.send <- msg:
			observability.RecordWSMessage(false)
		default:
			observability.RecordWSMessage(true)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade error: %v", err)
		return
	}

	cl := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientBuffer),
		done: make(chan struct{}),
	}
	// Greet with the current version so the client can fetch a first view.
	// Queued before registration so no broadcast can overtake it.
	hello, _ := json.Marshal(market.Change{Version: h.store.Version(), Kind: market.ChangeInit})
	cl.send <- hello

	n := h.add(cl)
	h.logger.Printf("websocket client %s connected (%d total)", cl.id, n)

	go h.writeLoop(cl)
	go h.readLoop(cl)
}

// readLoop discards client messages and detects disconnects.
func (h *Hub) readLoop(cl *client) {
	defer func() {
		cl.close()
		n := h.remove(cl)
		h.logger.Printf("websocket client %s disconnected (%d total)", cl.id, n)
	}()
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(cl *client) {
	defer cl.conn.Close()
	for {
		select {
		case <-cl.done:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(closeGraceWait))
			_ = cl.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Printf("websocket write error for %s: %v", cl.id, err)
				cl.close()
				return
			}
		}
	}
}

func (h *Hub) add(cl *client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[cl.id] = cl
	observability.SetWSClients(len(h.clients))
	return len(h.clients)
}

func (h *Hub) remove(cl *client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, cl.id)
	observability.SetWSClients(len(h.clients))
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, cl := range h.clients {
		cl.close()
	}
}
