package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RyanLangman/CM3070-FinalProject/internal/recording"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/log"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/response"
)

// RecordingsHandler exposes saved video segments.
type RecordingsHandler struct {
	svc *recording.Service
}

// NewRecordingsHandler creates a recordings handler.
func NewRecordingsHandler(svc *recording.Service) *RecordingsHandler {
	return &RecordingsHandler{svc: svc}
}

// RegisterRoutes registers the recordings routes.
func (h *RecordingsHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/recordings", h.List)
		api.GET("/recordings/:date/:name", h.Stream)
		api.DELETE("/recordings/:date/:name", h.Delete)
	}
}

// List returns all recordings grouped by date.
func (h *RecordingsHandler) List(c *gin.Context) {
	files, err := h.svc.List(c.Request.Context())
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to list recordings")
		response.InternalError(c, "Failed to list recordings")
		return
	}
	response.Success(c, gin.H{"recordings": files})
}

// Stream writes one recording's bytes to the client.
func (h *RecordingsHandler) Stream(c *gin.Context) {
	date, name := c.Param("date"), c.Param("name")

	rc, err := h.svc.Open(c.Request.Context(), date, name)
	if err != nil {
		if errors.Is(err, recording.ErrNotFound) {
			response.NotFound(c, "Recording not found")
			return
		}
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to open recording")
		response.InternalError(c, "Failed to open recording")
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "video/mp4")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// Client went away mid-stream; nothing to send back.
		log.Ctx(c.Request.Context()).Debug().Err(err).Msg("recording stream aborted")
	}
}

// Delete removes one recording.
func (h *RecordingsHandler) Delete(c *gin.Context) {
	date, name := c.Param("date"), c.Param("name")

	if err := h.svc.Delete(c.Request.Context(), date, name); err != nil {
		if errors.Is(err, recording.ErrNotFound) {
			response.NotFound(c, "Recording not found")
			return
		}
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to delete recording")
		response.InternalError(c, "Failed to delete recording")
		return
	}
	response.Success(c, gin.H{"deleted": name})
}
