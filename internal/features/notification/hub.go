package notification

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const sendBuffer = 16

// Socket is the part of a websocket connection the hub writes to.
type Socket interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client is one open socket of a user. A user may hold several.
type Client struct {
	socket Socket
	send   chan Message
	done   chan struct{}
	once   sync.Once
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans realtime messages out to every socket a user has open.
type Hub struct {
	mu      sync.RWMutex
	clients map[primitive.ObjectID]map[*Client]struct{}
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[primitive.ObjectID]map[*Client]struct{}),
		log:     log,
	}
}

// Register attaches a socket and starts its writer.
func (h *Hub) Register(userID primitive.ObjectID, socket Socket) *Client {
	c := &Client{
		socket: socket,
		send:   make(chan Message, sendBuffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	set, ok := h.clients[userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(userID, c)
	return c
}

// Unregister detaches a socket and waits for its writer to stop.
func (h *Hub) Unregister(userID primitive.ObjectID, c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, userID)
		}
	}
	c.close()
	h.mu.Unlock()
	<-c.done
}

// Push queues msg on every socket of userID and returns how many accepted it.
// Sockets whose buffer is full miss the message.
func (h *Hub) Push(userID primitive.ObjectID, msg Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.clients[userID] {
		select {
		case c.send <- msg:
			delivered++
		default:
			h.log.Warn("notification dropped, socket buffer full",
				zap.String("userId", userID.Hex()), zap.String("event", msg.Event))
		}
	}
	return delivered
}

// Connected reports how many sockets userID has open.
func (h *Hub) Connected(userID primitive.ObjectID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close drops every socket.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[primitive.ObjectID]map[*Client]struct{})
	for _, set := range all {
		for c := range set {
			c.close()
		}
	}
	h.mu.Unlock()

	for _, set := range all {
		for c := range set {
			_ = c.socket.Close()
			<-c.done
		}
	}
}

func (h *Hub) writePump(userID primitive.ObjectID, c *Client) {
	defer close(c.done)
	for msg := range c.send {
		if err := c.socket.WriteJSON(msg); err != nil {
			h.log.Debug("websocket write failed", zap.String("userId", userID.Hex()), zap.Error(err))
			_ = c.socket.Close()
			// drain so Push never blocks on a dead writer
			for range c.send {
			}
			return
		}
	}
}
