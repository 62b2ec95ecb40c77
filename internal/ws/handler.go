package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Handler struct {
	hub    *Hub
	logger *zap.Logger
}

func NewWsHandler(hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

var upgrade = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWs godoc
// @Summary Live rating feed.
// @Description Streams a JSON event for every photo rated by this instance.
// @Tags Ratings
// @Router /ws/ratings [get]
func (h *Handler) HandleWs(c echo.Context) error {
	conn, err := upgrade.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return nil
	}

	cl := &Client{
		ID:      uuid.New().String(),
		Conn:    conn,
		Message: make(chan *RatingEvent, 10),
	}
	if !h.hub.join(cl) {
		_ = conn.Close()
		return nil
	}

	go cl.writeMessage(h.logger)
	cl.readMessage(h.hub, h.logger)

	return nil
}
