package ws

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type Client struct {
	ID      string
	Conn    *websocket.Conn
	Message chan *RatingEvent
}

// RatingEvent is pushed to dashboards after each successful rating.
type RatingEvent struct {
	Type            string    `json:"type"`
	RecordID        string    `json:"record_id"`
	SchoolName      *string   `json:"school_name,omitempty"`
	CropGuess       string    `json:"crop_guess"`
	Stage           string    `json:"stage"`
	HealthScore     float64   `json:"health_score"`
	Recommendations []string  `json:"recommendations"`
	RatedAt         time.Time `json:"rated_at"`
}

const TypeRatingCompleted = "rating.completed"

func (c *Client) writeMessage(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Message:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				logger.Debug("websocket write failed", zap.String("client_id", c.ID), zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readMessage only drains the connection so close frames and pongs are
// processed. The feed is one-way.
func (c *Client) readMessage(hub *Hub, logger *zap.Logger) {
	defer hub.leave(c)

	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket closed unexpectedly", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
	}
}
