package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomAdmin receives every order and stock event.
const RoomAdmin = "admin"

// UserRoom is the room of a single customer.
func UserRoom(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// Event is a WebSocket message to be broadcast.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type roomEvent struct {
	Rooms []string
	Event Event
}

// Hub maintains the set of active clients grouped by room and broadcasts
// messages to them.
type Hub struct {
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *roomEvent

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomEvent, 256),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. Call it as a goroutine; it returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.room] == nil {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()

		case ev := <-h.broadcast:
			message, err := json.Marshal(ev.Event)
			if err != nil {
				zap.L().Warn("ws: marshal event", zap.String("type", ev.Event.Type), zap.Error(err))
				continue
			}

			h.mu.Lock()
			for _, room := range ev.Rooms {
				for client := range h.rooms[room] {
					select {
					case client.send <- message:
					default:
						// Slow consumer.
						h.drop(client)
					}
				}
			}
			h.mu.Unlock()

		case <-h.stop:
			h.mu.Lock()
			for _, clients := range h.rooms {
				for client := range clients {
					h.drop(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// drop removes client and closes its send channel. Callers hold h.mu.
func (h *Hub) drop(client *Client) {
	clients, ok := h.rooms[client.room]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.room)
	}
}

// Broadcast queues event for every client in the given rooms. It never
// blocks once the hub is stopped.
func (h *Hub) Broadcast(event Event, rooms ...string) {
	select {
	case h.broadcast <- &roomEvent{Rooms: rooms, Event: event}:
	case <-h.stop:
	}
}

// Stop ends Run, disconnects every client and waits for the loop to exit.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// join and leave are used by connection pumps. They give up once the hub
// has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stop:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stop:
	}
}
