package ws

import (
	"log"
	"sync"

	"decryptrace/internal/model"
)

const sendBufferSize = 256

// Hub tracks connected clients and their team rooms. It implements
// service.Broadcaster for a single instance; Relay adds cross-instance fan-out.
type Hub struct {
	clients map[*Connection]struct{}
	teams   map[string]map[*Connection]struct{} // teamName -> conns

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once
}

// Connection represents a WebSocket connection
type Connection struct {
	ID       string
	TeamName string // empty for spectators and admins
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is an encoded envelope with its audience
type BroadcastMessage struct {
	TeamName string // empty means every client
	Data     []byte
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[*Connection]struct{}),
		teams:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, sendBufferSize),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

// NewConnection creates an unregistered connection with a buffered send queue
func (h *Hub) NewConnection(id string) *Connection {
	return &Connection{
		ID:   id,
		Send: make(chan []byte, sendBufferSize),
		Hub:  h,
	}
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = struct{}{}
			if conn.TeamName != "" {
				if h.teams[conn.TeamName] == nil {
					h.teams[conn.TeamName] = make(map[*Connection]struct{})
				}
				h.teams[conn.TeamName][conn] = struct{}{}
				log.Printf("Team %s connected (%s)", conn.TeamName, conn.ID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				if room, ok := h.teams[conn.TeamName]; ok {
					delete(room, conn)
					if len(room) == 0 {
						delete(h.teams, conn.TeamName)
					}
				}
				close(conn.Send)
				if conn.TeamName != "" {
					log.Printf("Team %s disconnected (%s)", conn.TeamName, conn.ID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			if msg.TeamName == "" {
				for conn := range h.clients {
					conn.trySend(msg.Data)
				}
			} else {
				for conn := range h.teams[msg.TeamName] {
					conn.trySend(msg.Data)
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			return
		}
	}
}

// Close stops the hub loop. Pending deliveries are discarded.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
	}
}

// Unregister removes a connection and closes its send queue
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// BroadcastAll sends an event to every client (implements service.Broadcaster)
func (h *Hub) BroadcastAll(event model.Event) {
	h.deliverEvent("", event)
}

// BroadcastToTeam sends an event to one team room (implements service.Broadcaster)
func (h *Hub) BroadcastToTeam(teamName string, event model.Event) {
	h.deliverEvent(teamName, event)
}

func (h *Hub) deliverEvent(teamName string, event model.Event) {
	data, err := encodeEvent(event)
	if err != nil {
		log.Printf("failed to encode event: %v", err)
		return
	}
	h.deliver(&BroadcastMessage{TeamName: teamName, Data: data})
}

// deliver queues an envelope without ever blocking the caller
func (h *Hub) deliver(msg *BroadcastMessage) {
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("broadcast queue full, dropping message for %q", msg.TeamName)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TeamClientCount returns the number of connections in a team room
func (h *Hub) TeamClientCount(teamName string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.teams[teamName])
}

// trySend drops the message if the client is not keeping up
func (c *Connection) trySend(data []byte) bool {
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}
