// Package ws pushes per-user event feeds over WebSocket using
// gorilla/websocket.
//
//	hub := ws.NewHub()
//	go hub.Run(ctx)
//	router.Get("/ws/orders", "ws.orders", hub.Serve)
//
//	hub.Publish(ownerID, ws.Event{Type: "order.created", Data: order})
//
// Serve expects the caller's auth.Principal on the request context; anonymous
// connections are refused.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nuber-eats/nuber/pkg/auth"
	"github.com/nuber-eats/nuber/pkg/logger"
	"github.com/nuber-eats/nuber/pkg/metrics"
	"github.com/nuber-eats/nuber/pkg/response"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// Event is one message on a feed.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ─── Client ───────────────────────────────────────────────────────────────────

// Client is one connection subscribed to the feed of UserID.
type Client struct {
	UserID uint

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump only drains control frames; clients do not talk back.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "user_id", c.UserID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// ─── Hub ──────────────────────────────────────────────────────────────────────

type delivery struct {
	userID uint
	data   []byte
}

// Hub routes events to the connections of each user. All maps are owned by
// the Run goroutine.
type Hub struct {
	clients    map[uint]map[*Client]struct{}
	outbound   chan delivery
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}
}

// NewHub creates a hub. Run must be started before Serve or Publish are used.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]struct{}),
		outbound:   make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Run is the hub event loop. It returns when ctx is cancelled, closing every
// connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = make(map[uint]map[*Client]struct{})
			metrics.WSClients.Set(0)
			return

		case c := <-h.register:
			set, ok := h.clients[c.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.UserID] = set
			}
			set[c] = struct{}{}
			metrics.WSClients.Inc()
			logger.Debug("ws: client connected", "user_id", c.UserID)

		case c := <-h.unregister:
			h.drop(c)

		case d := <-h.outbound:
			for c := range h.clients[d.userID] {
				select {
				case c.send <- d.data:
				default:
					h.drop(c)
				}
			}

		case reply := <-h.count:
			n := 0
			for _, set := range h.clients {
				n += len(set)
			}
			reply <- n
		}
	}
}

func (h *Hub) drop(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.send)
	metrics.WSClients.Dec()
	logger.Debug("ws: client disconnected", "user_id", c.UserID)
}

// Publish queues ev for every connection of userID. It never blocks; when
// the hub is saturated the event is dropped.
func (h *Hub) Publish(userID uint, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws: encode event", "type", ev.Type, "error", err)
		return
	}
	select {
	case h.outbound <- delivery{userID: userID, data: data}:
	default:
		logger.Warn("ws: outbound queue full, dropping event", "type", ev.Type, "user_id", userID)
	}
}

// ClientCount returns the number of open connections, or 0 once the hub has
// stopped.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// ─── Upgrade ─────────────────────────────────────────────────────────────────

// Serve upgrades the request and subscribes it to the caller's feed.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if p == nil {
		response.Forbidden(w)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("ws: upgrade failed", "error", err)
		return
	}
	c := &Client{UserID: p.ID, hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}
