package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/RyanLangman/CM3070-FinalProject/internal/stream"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/log"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/response"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingInterval = 54 * time.Second
	wsSendBuffer   = 8
)

// LiveHandler upgrades viewers to websocket and feeds them live frames.
type LiveHandler struct {
	broadcaster *stream.Broadcaster
	upgrader    websocket.Upgrader
}

// NewLiveHandler creates a live feed handler.
func NewLiveHandler(broadcaster *stream.Broadcaster) *LiveHandler {
	return &LiveHandler{
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// RegisterRoutes registers the live feed routes.
func (h *LiveHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws/live/:id", h.Live)
}

// Live streams one camera's frames to a websocket viewer as base64 text
// messages. Monitored cameras are served from the shared frame bus;
// unmonitored cameras get an exclusive preview capture that is released when
// the viewer disconnects.
func (h *LiveHandler) Live(c *gin.Context) {
	id, ok := cameraID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		response.BadRequest(c, "Failed to upgrade connection")
		return
	}

	viewerID := uuid.New().String()
	logger := log.Ctx(c.Request.Context()).With().
		Int(log.FieldCameraID, id).
		Str(log.FieldViewerID, viewerID).
		Logger()

	ctx, cancel := context.WithCancel(c.Request.Context())
	send := make(chan []byte, wsSendBuffer)

	// Read pump: we never expect client messages, but reading is what
	// surfaces disconnects and keeps the pong handler serviced.
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
					logger.Warn().Err(err).Msg("viewer read error")
				}
				return
			}
		}
	}()

	// Write pump: frames from the serve loop plus keepalive pings.
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer func() {
			ticker.Stop()
			conn.Close()
		}()
		for {
			select {
			case payload, ok := <-send:
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if !ok {
					conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	sendFrame := func(payload []byte) error {
		select {
		case send <- payload:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			// Viewer is behind; skip the frame, the next one supersedes it.
			return nil
		}
	}

	logger.Info().Msg("viewer connected")

	if h.broadcaster.Monitored(id) {
		err = h.broadcaster.ServeMonitored(ctx, id, sendFrame)
	} else {
		err = h.broadcaster.ServePreview(ctx, id, sendFrame)
	}
	cancel()
	close(send)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Info().Err(err).Msg("viewer disconnected")
		return
	}
	logger.Info().Msg("viewer disconnected")
}
