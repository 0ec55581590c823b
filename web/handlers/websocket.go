package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket" //nolint:staticcheck // TODO: migrate to github.com/coder/websocket

	"github.com/ritualgrammar/navigator/internal/engine"
	"github.com/ritualgrammar/navigator/internal/storage"
)

// WebSocketHub pushes store status changes to connected browsers. The most
// recent status of each store kind is replayed to subscribers as they join,
// so a page opened after the inferred store finished still learns about it.
type WebSocketHub struct {
	subscribers map[subscriber]struct{}
	outbox      chan []byte
	join        chan subscriber
	leave       chan subscriber
	origins     []string

	mu     sync.Mutex
	latest map[storage.Kind][]byte

	ctx    context.Context
	cancel context.CancelFunc
}

// subscriber is implemented by websocket connections and test doubles.
type subscriber interface {
	sendChannel() chan []byte
	close()
}

// Client is one browser connection.
type Client struct {
	hub  *WebSocketHub
	conn *websocket.Conn //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	send chan []byte
}

func (c *Client) sendChannel() chan []byte { return c.send }

func (c *Client) close() {
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	}
}

// NewWebSocketHub creates a hub accepting browsers from the given host:port
// origins.
func NewWebSocketHub(origins ...string) *WebSocketHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &WebSocketHub{
		subscribers: make(map[subscriber]struct{}),
		outbox:      make(chan []byte, 256),
		join:        make(chan subscriber),
		leave:       make(chan subscriber),
		origins:     origins,
		latest:      make(map[storage.Kind][]byte),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run owns the subscriber set until Stop is called.
func (h *WebSocketHub) Run() {
	for {
		select {
		case sub := <-h.join:
			h.mu.Lock()
			h.subscribers[sub] = struct{}{}
			for _, kind := range []storage.Kind{storage.KindAsserted, storage.KindInferred} {
				if msg, ok := h.latest[kind]; ok {
					h.deliver(sub, msg)
				}
			}
			count := len(h.subscribers)
			h.mu.Unlock()
			slog.Debug("websocket client connected", "clients", count)

		case sub := <-h.leave:
			h.mu.Lock()
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.sendChannel())
			}
			count := len(h.subscribers)
			h.mu.Unlock()
			slog.Debug("websocket client disconnected", "clients", count)

		case msg := <-h.outbox:
			h.mu.Lock()
			for sub := range h.subscribers {
				h.deliver(sub, msg)
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			slog.Debug("websocket hub stopping")
			return
		}
	}
}

// deliver hands msg to sub without blocking. A subscriber whose buffer is
// full is dropped. Callers hold h.mu.
func (h *WebSocketHub) deliver(sub subscriber, msg []byte) {
	select {
	case sub.sendChannel() <- msg:
	default:
		close(sub.sendChannel())
		delete(h.subscribers, sub)
	}
}

// Stop disconnects every subscriber and ends Run.
func (h *WebSocketHub) Stop() {
	h.cancel()

	h.mu.Lock()
	for sub := range h.subscribers {
		close(sub.sendChannel())
		sub.close()
	}
	h.subscribers = make(map[subscriber]struct{})
	h.mu.Unlock()
}

// Broadcast encodes message as JSON and queues it for every subscriber.
func (h *WebSocketHub) Broadcast(message any) {
	data, err := json.Marshal(message)
	if err != nil {
		slog.Error("failed to marshal websocket message", "error", err)
		return
	}
	h.enqueue(data)
}

func (h *WebSocketHub) enqueue(data []byte) {
	select {
	case h.outbox <- data:
	default:
		slog.Warn("websocket broadcast channel full, dropping message")
	}
}

// PublishStoreStatus broadcasts a store state change and remembers it for
// later subscribers. It matches the callback signature of
// engine.StoreCache.Watch.
func (h *WebSocketHub) PublishStoreStatus(ev engine.StatusEvent) {
	data, err := json.Marshal(StatusMessage{Type: "store_status", Data: ev})
	if err != nil {
		slog.Error("failed to marshal store status", "error", err, "store", string(ev.Kind))
		return
	}
	h.mu.Lock()
	h.latest[ev.Kind] = data
	h.mu.Unlock()
	h.enqueue(data)
}

// Register adds a subscriber to the hub.
func (h *WebSocketHub) Register(sub subscriber) {
	select {
	case h.join <- sub:
	case <-h.ctx.Done():
	}
}

// Unregister removes a subscriber from the hub.
func (h *WebSocketHub) Unregister(sub subscriber) {
	select {
	case h.leave <- sub:
	case <-h.ctx.Done():
	}
}

// ServeHTTP upgrades the request to a websocket after checking its origin.
func (h *WebSocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != "" && !h.allowedOrigin(origin) {
		http.Error(w, "Forbidden: invalid origin", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{ //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "request_id", RequestID(r.Context()))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 16),
	}
	h.Register(client)

	go client.writePump()
	go client.readPump()
}

func (h *WebSocketHub) allowedOrigin(origin string) bool {
	for _, o := range h.origins {
		if origin == "http://"+o || origin == "https://"+o {
			return true
		}
	}
	return false
}

// writePump forwards queued messages until the send channel is closed.
func (c *Client) writePump() {
	defer func() {
		c.hub.Unregister(c)
		c.close()
	}()

	for message := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, message) //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
		cancel()
		if err != nil {
			slog.Debug("websocket write failed", "error", err)
			return
		}
	}
}

// readPump discards client frames; a read error means the browser left.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.close()
	}()

	for {
		if _, _, err := c.conn.Read(c.hub.ctx); err != nil { //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
			return
		}
	}
}

// MockClient is a subscriber backed by a plain channel, for tests.
type MockClient struct {
	SendChan chan []byte
}

func (m *MockClient) sendChannel() chan []byte { return m.SendChan }

func (m *MockClient) close() {}
