package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Message is the envelope pushed to parent connections.
type Message struct {
	Type      string      `json:"type"`
	ParentID  uint        `json:"parent_id"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type outgoing struct {
	parentID uint
	data     []byte
}

var ErrHubBusy = errors.New("websocket hub is busy")

// Hub maintains the set of active clients per parent and fans messages out to them.
type Hub struct {
	// Registered clients by parent ID
	clients map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan outgoing
	done       chan struct{}

	mu  sync.Mutex
	log *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outgoing, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Register регистрирует нового клиента в хабе
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister отменяет регистрацию клиента
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToParent queues msg for every connection of the parent. It never blocks.
func (h *Hub) SendToParent(parentID uint, msg Message) error {
	msg.ParentID = parentID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- outgoing{parentID: parentID, data: data}:
		return nil
	default:
		return ErrHubBusy
	}
}

// ClientCount returns the number of open connections of a parent.
func (h *Hub) ClientCount(parentID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[parentID])
}

// Run owns the client map until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for parentID, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
				delete(h.clients, parentID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[client.ParentID]; !ok {
				h.clients[client.ParentID] = make(map[*Client]bool)
			}
			h.clients[client.ParentID][client] = true
			h.mu.Unlock()
			h.log.WithField("parent_id", client.ParentID).Debug("websocket client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[message.parentID] {
				select {
				case client.send <- message.data:
				default:
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove expects h.mu to be held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.ParentID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.ParentID)
	}
	h.log.WithField("parent_id", client.ParentID).Debug("websocket client unregistered")
}
