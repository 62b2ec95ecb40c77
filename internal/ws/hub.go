package ws

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub fans rating events out to every connected dashboard client.
type Hub struct {
	Clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan *RatingEvent
	Mu         *sync.RWMutex
	done       chan struct{}
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		Clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan *RatingEvent, 16),
		Mu:         &sync.RWMutex{},
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register, unregister and broadcast requests until ctx is done,
// then closes every client's message channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.Mu.Lock()
			for id, cl := range h.Clients {
				close(cl.Message)
				delete(h.Clients, id)
			}
			h.Mu.Unlock()
			return

		case cl := <-h.Register:
			h.Mu.Lock()
			if _, ok := h.Clients[cl.ID]; !ok {
				h.Clients[cl.ID] = cl
			}
			h.Mu.Unlock()

		case cl := <-h.Unregister:
			h.Mu.Lock()
			if _, ok := h.Clients[cl.ID]; ok {
				delete(h.Clients, cl.ID)
				close(cl.Message)
			}
			h.Mu.Unlock()

		case m := <-h.Broadcast:
			h.Mu.Lock()
			for id, cl := range h.Clients {
				select {
				case cl.Message <- m:
				default:
					// Slow consumer; drop it rather than stall the hub.
					delete(h.Clients, id)
					close(cl.Message)
					h.logger.Warn("dropping slow websocket client", zap.String("client_id", id))
				}
			}
			h.Mu.Unlock()
		}
	}
}

// Publish queues event for broadcast without blocking the caller. Events are
// dropped when the broadcast queue is full.
func (h *Hub) Publish(event *RatingEvent) {
	select {
	case h.Broadcast <- event:
	default:
		h.logger.Warn("rating feed queue full, event dropped", zap.String("record_id", event.RecordID))
	}
}

// join and leave give up once the hub has stopped.
func (h *Hub) join(cl *Client) bool {
	select {
	case h.Register <- cl:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(cl *Client) {
	select {
	case h.Unregister <- cl:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.Mu.RLock()
	defer h.Mu.RUnlock()
	return len(h.Clients)
}
