package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// EventSubscriber streams a user's board event payloads.
type EventSubscriber interface {
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []byte, func() error)
}

// EventsHandler relays board change events to the user's open tabs.
type EventsHandler struct {
	subscriber EventSubscriber
	logger     *zap.Logger
}

func NewEventsHandler(subscriber EventSubscriber, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Stream godoc
// @Summary      Board event stream
// @Description  Upgrades to a WebSocket that receives the user's board change events. Browsers pass the JWT as the token query parameter.
// @Tags         events
// @Security     BearerAuth
// @Param        token  query  string  false  "JWT"
// @Success      101
// @Failure      401  {object}  handler.ErrorResponse
// @Router       /ws [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// subscribe first so nothing published after the handshake is missed
	msgs, closeSub := h.subscriber.Subscribe(ctx, userID)
	defer closeSub()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return
	}
	defer conn.Close()

	h.logger.Info("Event stream opened", zap.String("user_id", userID.String()))

	go h.readPump(conn, cancel)
	h.writePump(ctx, conn, msgs)

	h.logger.Info("Event stream closed", zap.String("user_id", userID.String()))
}

// readPump consumes control frames and cancels the stream when the client
// goes away. Clients never send data frames.
func (h *EventsHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *EventsHandler) writePump(ctx context.Context, conn *websocket.Conn, msgs <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg, ok := <-msgs:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
