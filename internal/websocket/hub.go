package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/susp3kt93/myfleet-sub000/internal/events"
)

const (
	pongWait      = 60 * time.Second
	pingPeriod    = 54 * time.Second
	writeWait     = 10 * time.Second
	staleAfter    = 90 * time.Second
	clientBacklog = 256
)

var ErrBroadcastFull = errors.New("broadcast channel full")

// Hub streams domain events to connected dashboard clients of the same
// company. It implements events.Publisher.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan events.Event
	mutex      sync.RWMutex
	upgrader   websocket.Upgrader
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub(allowedOrigins []string) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan events.Event, 1000),
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		done: make(chan struct{}),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Start runs the hub loop until Stop is called.
func (h *Hub) Start() {
	go h.run()
	log.Info("Event hub started")
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mutex.Lock()
		for id, client := range h.clients {
			delete(h.clients, id)
			close(client.Send)
			if client.Conn != nil {
				client.Conn.Close()
			}
		}
		h.mutex.Unlock()

		log.Info("Event hub stopped")
	})
}

func (h *Hub) run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client.ID] = client
			h.mutex.Unlock()
			log.WithFields(log.Fields{"client_id": client.ID, "company_id": client.CompanyID}).Debug("Client registered")
			go h.handleClient(client)

		case client := <-h.unregister:
			h.remove(client.ID)

		case event := <-h.broadcast:
			h.deliver(event)

		case <-ticker.C:
			h.evictStale()

		case <-h.done:
			return
		}
	}
}

// Register attaches conn to the hub.
func (h *Hub) Register(client *Client) {
	if client.Send == nil {
		client.Send = make(chan events.Event, clientBacklog)
	}
	client.LastPing = time.Now()
	client.IsActive = true

	select {
	case h.register <- client:
	case <-h.done:
		client.Conn.Close()
	}
}

// Publish queues event for delivery without blocking the caller.
func (h *Hub) Publish(_ context.Context, event events.Event) error {
	select {
	case h.broadcast <- event:
		return nil
	default:
		return ErrBroadcastFull
	}
}

func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) Stats() ClientStats {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	stats := ClientStats{TotalClients: len(h.clients)}
	for _, client := range h.clients {
		if client.IsActive {
			stats.ActiveClients++
		} else {
			stats.InactiveClients++
		}
	}
	return stats
}

func (h *Hub) Upgrader() *websocket.Upgrader {
	return &h.upgrader
}

func (h *Hub) remove(id string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	client, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	close(client.Send)
	if client.Conn != nil {
		client.Conn.Close()
	}
	log.WithField("client_id", id).Debug("Client unregistered")
}

// deliver queues event for every interested client. Clients whose buffer is
// full are dropped once the read lock is released.
func (h *Hub) deliver(event events.Event) {
	var full []string

	h.mutex.RLock()
	for id, client := range h.clients {
		if !client.wants(event) {
			continue
		}
		select {
		case client.Send <- event:
		default:
			full = append(full, id)
		}
	}
	h.mutex.RUnlock()

	for _, id := range full {
		log.WithField("client_id", id).Warn("Client send buffer full, dropping client")
		h.remove(id)
	}
}

func (h *Hub) evictStale() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	now := time.Now()
	for id, client := range h.clients {
		if now.Sub(client.LastPing) > staleAfter {
			log.WithField("client_id", id).Info("Client timed out")
			delete(h.clients, id)
			close(client.Send)
			if client.Conn != nil {
				client.Conn.Close()
			}
		}
	}
}

func (h *Hub) handleClient(client *Client) {
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}()

	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		h.mutex.Lock()
		client.LastPing = time.Now()
		h.mutex.Unlock()
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go h.writePump(client)

	for {
		var message struct {
			Type    string  `json:"type"`
			Filters Filters `json:"filters"`
		}
		if err := client.Conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithField("client_id", client.ID).WithError(err).Debug("WebSocket read error")
			}
			return
		}

		if message.Type == MessageTypeUpdateFilters {
			h.mutex.Lock()
			client.Filters = message.Filters
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(map[string]interface{}{
				"type": MessageTypeEvent,
				"data": event,
			})
			if err != nil {
				log.WithError(err).Error("Failed to encode event")
				continue
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
