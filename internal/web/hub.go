// Package web exposes the agent over HTTP and pushes progress events over
// websockets.
package web

import (
	"encoding/json"
	"sync"

	"github.com/quillworks/quill/internal/logger"
	"github.com/quillworks/quill/internal/orchestrator"
)

// Hub fans progress events out to connected websocket clients.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a hub. Call Run in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set; all membership changes go through its channels.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
		case <-h.done:
			for client := range h.clients {
				close(client.send)
			}
			return
		}
	}
}

// Close stops the hub loop and disconnects all clients. Safe to call more
// than once.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Publish implements orchestrator.EventPublisher. Events are JSON-encoded
// and broadcast without blocking the agent loop; a full buffer drops the
// event.
func (h *Hub) Publish(event orchestrator.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Warn("failed to encode event: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logger.Debug("event buffer full, dropping %s event", event.Type)
	}
}
