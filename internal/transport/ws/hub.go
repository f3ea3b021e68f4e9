package ws

import (
	"encoding/json"
	"log"
	"sync"

	"examforge/internal/model"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans score updates out to the graders watching each quiz
type Hub struct {
	// quizID -> watcher connections
	watchers map[string]map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *scoreBroadcast
}

// Connection represents one watcher's WebSocket connection
type Connection struct {
	QuizID string
	Send   chan []byte
	Hub    *Hub
}

type scoreBroadcast struct {
	quizID  string
	message *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		watchers:   make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *scoreBroadcast, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.watchers[conn.QuizID] == nil {
				h.watchers[conn.QuizID] = make(map[*Connection]bool)
			}
			h.watchers[conn.QuizID][conn] = true
			log.Printf("Watcher connected to quiz %s", conn.QuizID)
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.watchers[conn.QuizID]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					log.Printf("Watcher disconnected from quiz %s", conn.QuizID)
				}
				if len(conns) == 0 {
					delete(h.watchers, conn.QuizID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.message)
			for conn := range h.watchers[msg.quizID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastScore sends a score update to every watcher of a quiz
// (implements service.Broadcaster)
func (h *Hub) BroadcastScore(quizID string, update *model.ScoreUpdate) {
	data, _ := json.Marshal(update)
	h.broadcast <- &scoreBroadcast{
		quizID: quizID,
		message: &Message{
			Type:    update.Event,
			Payload: data,
		},
	}
}
