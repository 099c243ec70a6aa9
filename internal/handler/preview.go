package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/RyanLangman/CM3070-FinalProject/internal/stream"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/response"
)

// PreviewHandler serves one-shot frames from every monitored camera.
type PreviewHandler struct {
	broadcaster *stream.Broadcaster
}

// NewPreviewHandler creates a preview handler.
func NewPreviewHandler(broadcaster *stream.Broadcaster) *PreviewHandler {
	return &PreviewHandler{broadcaster: broadcaster}
}

// RegisterRoutes registers the preview routes.
func (h *PreviewHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/preview", h.Preview)
	}
}

// Preview returns the latest transport-encoded frame per monitored camera,
// keyed by camera id. Cameras without a published frame yet are absent.
func (h *PreviewHandler) Preview(c *gin.Context) {
	response.Success(c, gin.H{"frames": h.broadcaster.Snapshot()})
}
