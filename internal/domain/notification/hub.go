package notification

import (
	"context"
	"encoding/json"
	"expvar"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const studentEventsChannel = "notify:student_events"

var (
	wsConnectionsGauge   = expvar.NewInt("websocket_connections")
	wsEventsSentTotal    = expvar.NewInt("websocket_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("websocket_events_dropped_total")
)

// Event is the envelope pushed to connected game clients
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type studentEventMessage struct {
	StudentID        string          `json:"student_id"`
	Payload          json.RawMessage `json:"payload"`
	SenderInstanceID string          `json:"sender_instance_id"`
}

// Connection is one student's WebSocket connection
type Connection struct {
	StudentID string
	Conn      *websocket.Conn
	Send      chan []byte
}

// Hub fans out point and redemption events to connected students.
// Cross-instance delivery goes through Redis Pub/Sub; without Redis the
// hub degrades to local-only delivery.
type Hub struct {
	connections map[string]map[*Connection]bool
	mu          sync.RWMutex

	redis  *redis.Client
	pubsub *redis.PubSub

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc

	instanceID string
}

// NewHub creates a notification hub. The Redis client may be nil.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		connections: make(map[string]map[*Connection]bool),
		redis:       redisClient,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
		instanceID:  uuid.NewString(),
	}
	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, studentEventsChannel)
	}
	return h
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.StudentID] == nil {
				h.connections[conn.StudentID] = make(map[*Connection]bool)
			}
			h.connections[conn.StudentID][conn] = true
			h.mu.Unlock()
			wsConnectionsGauge.Add(1)
			log.Debug().Str("student_id", conn.StudentID).Msg("Student connected to WebSocket")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[conn.StudentID]; ok {
				if _, exists := conns[conn]; exists {
					delete(conns, conn)
					close(conn.Send)
					wsConnectionsGauge.Add(-1)
				}
				if len(conns) == 0 {
					delete(h.connections, conn.StudentID)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("student_id", conn.StudentID).Msg("Student disconnected from WebSocket")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event studentEventMessage
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			// Local delivery already happened on the publishing instance
			if event.SenderInstanceID == h.instanceID {
				continue
			}
			h.sendLocal(event.StudentID, []byte(event.Payload))
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

// NotifyStudent pushes an event to every connection the student has, on
// this instance and, via Redis, on every other instance.
func (h *Hub) NotifyStudent(studentID string, eventType string, payload any) {
	data, err := json.Marshal(&Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("Failed to marshal WebSocket event")
		return
	}

	h.sendLocal(studentID, data)

	if h.redis == nil {
		return
	}
	msg, err := json.Marshal(&studentEventMessage{
		StudentID:        studentID,
		Payload:          data,
		SenderInstanceID: h.instanceID,
	})
	if err != nil {
		return
	}
	if err := h.redis.Publish(h.ctx, studentEventsChannel, msg).Err(); err != nil {
		log.Error().Err(err).Msg("Redis publish failed")
	}
}

// sendLocal holds the read lock across the whole send loop so an
// unregister cannot close a Send channel mid-iteration. The sends are
// non-blocking, so the lock is held only briefly.
func (h *Hub) sendLocal(studentID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.connections[studentID]
	if !ok {
		return
	}

	for conn := range conns {
		select {
		case conn.Send <- data:
			wsEventsSentTotal.Add(1)
		default:
			// Buffer full, skip this message
			wsEventsDroppedTotal.Add(1)
			log.Warn().Str("student_id", studentID).Msg("WebSocket send buffer full")
		}
	}
}

// ConnectionCount returns the number of local connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.connections {
		total += len(conns)
	}
	return total
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}
