package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	UserID    string
	SessionID string
	Send      chan []byte
	Conn      *websocket.Conn // interface for Gorilla/WebSocket
}

type Hub struct {
	Clients    map[string]map[*Client]bool // sessionID -> clients
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan BroadcastMessage
	mu         sync.RWMutex
}

type BroadcastMessage struct {
	SessionID string
	Data      []byte
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan BroadcastMessage, 64),
	}
}

// GetActiveClientCount returns how many clients are subscribed to a session.
func (h *Hub) GetActiveClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients[sessionID])
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Clients[client.SessionID] == nil {
				h.Clients[client.SessionID] = make(map[*Client]bool)
			}
			h.Clients[client.SessionID][client] = true
			h.mu.Unlock()
		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.Clients[client.SessionID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
				}
			}
			h.mu.Unlock()
		case msg := <-h.Broadcast:
			h.mu.RLock()
			for client := range h.Clients[msg.SessionID] {
				select {
				case client.Send <- msg.Data:
				default:
					close(client.Send)
					delete(h.Clients[msg.SessionID], client)
				}
			}
			h.mu.RUnlock()
		}
	}
}
