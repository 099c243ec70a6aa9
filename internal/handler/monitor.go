package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/RyanLangman/CM3070-FinalProject/internal/monitor"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/log"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/response"
)

// MonitorHandler exposes per-camera monitoring control.
type MonitorHandler struct {
	registry *monitor.SessionRegistry
	cameras  []int
}

// NewMonitorHandler creates a monitoring handler. cameras is the list of
// device ids found at startup.
func NewMonitorHandler(registry *monitor.SessionRegistry, cameras []int) *MonitorHandler {
	return &MonitorHandler{registry: registry, cameras: cameras}
}

// RegisterRoutes registers the monitoring routes.
func (h *MonitorHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/cameras", h.ListCameras)
		api.GET("/monitoring", h.Status)
		api.POST("/monitoring/:id/start", h.Start)
		api.POST("/monitoring/:id/stop", h.Stop)
	}
}

// ListCameras returns the camera ids available on this host.
func (h *MonitorHandler) ListCameras(c *gin.Context) {
	response.Success(c, gin.H{"cameras": h.cameras})
}

// Status returns the state of every live session.
func (h *MonitorHandler) Status(c *gin.Context) {
	states := h.registry.States()
	out := make(map[string]string, len(states))
	for id, st := range states {
		out[strconv.Itoa(id)] = st.String()
	}
	response.Success(c, gin.H{"monitoring": out})
}

// Start begins monitoring a camera.
func (h *MonitorHandler) Start(c *gin.Context) {
	id, ok := cameraID(c)
	if !ok {
		return
	}

	if err := h.registry.Start(id); err != nil {
		if errors.Is(err, monitor.ErrAlreadyRunning) {
			response.Error(c, http.StatusConflict, "ALREADY_RUNNING", "Camera is already being monitored")
			return
		}
		log.Ctx(c.Request.Context()).Error().Err(err).Int(log.FieldCameraID, id).Msg("failed to start monitoring")
		response.InternalError(c, "Failed to start monitoring")
		return
	}
	response.Success(c, gin.H{"camera_id": id, "monitoring": true})
}

// Stop ends monitoring for a camera.
func (h *MonitorHandler) Stop(c *gin.Context) {
	id, ok := cameraID(c)
	if !ok {
		return
	}

	if err := h.registry.Stop(id); err != nil {
		if errors.Is(err, monitor.ErrNotFound) {
			response.NotFound(c, "No monitoring process found")
			return
		}
		log.Ctx(c.Request.Context()).Error().Err(err).Int(log.FieldCameraID, id).Msg("failed to stop monitoring")
		response.InternalError(c, "Failed to stop monitoring")
		return
	}
	response.Success(c, gin.H{"camera_id": id, "monitoring": false})
}

func cameraID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		response.BadRequest(c, "Invalid camera id")
		return 0, false
	}
	return id, true
}
