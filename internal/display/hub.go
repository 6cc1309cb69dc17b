// Package display pushes kiosk field values to browser viewers over WebSocket.
package display

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"attendcam/internal/logger"
	"attendcam/internal/presentation"

	"github.com/gorilla/websocket"
)

const (
	// broadcastBuffer is large enough for several full renders of every field.
	broadcastBuffer = 128
	// sendBuffer is the backlog one viewer may accumulate before it is dropped.
	sendBuffer = 256
	// writeWait bounds a single write to a viewer.
	writeWait = 10 * time.Second
)

// Update is one field write as sent to viewers.
type Update struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// viewer is a registered connection and the queue drained by its writer goroutine.
type viewer struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans field updates out to every registered viewer and remembers the last value
// of each field so that late viewers start from the current screen.
//
// Run never writes to a connection itself. Every viewer has its own writer, and a
// viewer whose queue is full is dropped.
type Hub struct {
	clients    map[*websocket.Conn]*viewer
	broadcast  chan Update
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	values     map[presentation.FieldID]string
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*viewer),
		broadcast:  make(chan Update, broadcastBuffer),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		values:     make(map[presentation.FieldID]string),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes every viewer.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case conn := <-h.register:
			v := &viewer{conn: conn, send: make(chan []byte, sendBuffer)}
			h.mutex.Lock()
			h.clients[conn] = v
			count := len(h.clients)
			h.mutex.Unlock()
			go h.writePump(v)
			h.logger.Info("Viewer registered. Total: %d", count)
			h.queueSnapshot(v)

		case conn := <-h.unregister:
			if h.drop(conn) {
				h.logger.Info("Viewer unregistered. Total: %d", h.ClientCount())
			}

		case update := <-h.broadcast:
			message, err := json.Marshal(update)
			if err != nil {
				h.logger.Error("Error encoding update for %s: %v", update.Field, err)
				continue
			}
			for _, v := range h.viewers() {
				h.enqueue(v, message)
			}

		case <-ctx.Done():
			for _, v := range h.viewers() {
				h.drop(v.conn)
			}
			return
		}
	}
}

// Register adds a viewer. It is a no-op once Run has returned.
func (h *Hub) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister removes and closes a viewer.
func (h *Hub) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish records value as the current content of field and queues it for viewers.
// When the queue is full the update is dropped for live viewers but still reaches
// the snapshot of the next one to connect.
func (h *Hub) Publish(field presentation.FieldID, value string) {
	h.mutex.Lock()
	h.values[field] = value
	h.mutex.Unlock()

	select {
	case h.broadcast <- Update{Field: string(field), Value: value}:
	default:
		h.logger.Warning("Display queue full, dropped update for %s", field)
	}
}

// Snapshot returns the current value of every field written so far, in display order.
func (h *Hub) Snapshot() []Update {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	updates := make([]Update, 0, len(h.values))
	for _, id := range presentation.AllFields {
		if v, ok := h.values[id]; ok {
			updates = append(updates, Update{Field: string(id), Value: v})
		}
	}
	return updates
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Sink renders one presentation field into the hub.
func Sink(h *Hub, id presentation.FieldID) presentation.Sink {
	return presentation.SinkFunc(func(value string) {
		h.Publish(id, value)
	})
}

func (h *Hub) queueSnapshot(v *viewer) {
	for _, update := range h.Snapshot() {
		message, err := json.Marshal(update)
		if err != nil {
			h.logger.Error("Error encoding snapshot for %s: %v", update.Field, err)
			continue
		}
		if !h.enqueue(v, message) {
			return
		}
	}
}

// enqueue hands message to the viewer's writer, dropping a viewer that has fallen
// sendBuffer messages behind.
func (h *Hub) enqueue(v *viewer, message []byte) bool {
	select {
	case v.send <- message:
		return true
	default:
		h.logger.Warning("Viewer %s is not keeping up, dropping it", v.conn.RemoteAddr())
		h.drop(v.conn)
		return false
	}
}

// writePump is the only writer of a connection. It ends when the send queue is closed
// or a write fails.
func (h *Hub) writePump(v *viewer) {
	for message := range v.send {
		v.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := v.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Error("Error sending message: %v", err)
			h.Unregister(v.conn)
			return
		}
	}
}

func (h *Hub) viewers() []*viewer {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	viewers := make([]*viewer, 0, len(h.clients))
	for _, v := range h.clients {
		viewers = append(viewers, v)
	}
	return viewers
}

// drop forgets a viewer and stops its writer. Only Run calls it.
func (h *Hub) drop(conn *websocket.Conn) bool {
	h.mutex.Lock()
	v, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
	}
	h.mutex.Unlock()

	if !ok {
		return false
	}
	close(v.send)
	// a writer stuck on a peer that stopped reading is released by closing the socket
	conn.Close()
	return true
}
