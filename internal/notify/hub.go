package notify

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Client is one websocket connection with an optional kind filter.
// An empty kinds set means "everything".
type Client struct {
	conn  *websocket.Conn
	send  chan []byte
	kinds map[string]bool
}

// NewClient wraps a websocket connection. kinds narrows which event kinds the
// client receives; nil or empty means all.
func NewClient(conn *websocket.Conn, kinds []string) *Client {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		if k != "" {
			set[k] = true
		}
	}
	return &Client{conn: conn, send: make(chan []byte, 32), kinds: set}
}

func (c *Client) wants(kind string) bool {
	return len(c.kinds) == 0 || c.kinds[kind]
}

// Hub fans Redis-published events out to websocket clients.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run is the hub's event loop. Call it in its own goroutine; it returns when
// ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				_ = c.conn.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			log.Debug().Int("clients", h.ClientCount()).Msg("ws: client connected")
		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			log.Debug().Int("clients", h.ClientCount()).Msg("ws: client disconnected")
		case msg := <-h.broadcast:
			var ev Event
			if err := json.Unmarshal(msg, &ev); err != nil {
				continue
			}
			h.mu.RLock()
			for c := range h.clients {
				if !c.wants(ev.Kind) {
					continue
				}
				select {
				case c.send <- msg:
				default:
					// Slow consumer: drop the message rather than block the hub
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Subscribe pumps Redis pub/sub messages into the hub until ctx is canceled.
func (h *Hub) Subscribe(ctx context.Context, rdb *redis.Client) {
	sub := rdb.Subscribe(ctx, Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast <- []byte(msg.Payload)
		}
	}
}

// WritePump drains the client's send channel onto the wire. Runs per client.
func (c *Client) WritePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ReadPump discards inbound frames and detects disconnects. Runs per client.
func (c *Client) ReadPump(h *Hub) {
	defer func() {
		h.Unregister(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
