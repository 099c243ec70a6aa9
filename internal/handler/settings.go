package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/RyanLangman/CM3070-FinalProject/internal/settings"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/log"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/response"
)

// SettingsHandler exposes the persisted monitoring settings.
type SettingsHandler struct {
	store *settings.Store
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// RegisterRoutes registers the settings routes.
func (h *SettingsHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/settings", h.Get)
		api.PUT("/settings", h.Update)
		api.POST("/settings/toggle_night_vision", h.ToggleNightVision)
		api.POST("/settings/toggle_facial_recognition", h.ToggleFacialRecognition)
	}
}

// Get returns the current settings snapshot.
func (h *SettingsHandler) Get(c *gin.Context) {
	response.Success(c, h.store.Current())
}

// Update replaces the settings.
func (h *SettingsHandler) Update(c *gin.Context) {
	var next settings.Settings
	if err := c.ShouldBindJSON(&next); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.store.Update(next); err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to update settings")
		response.InternalError(c, "Failed to persist settings")
		return
	}
	response.Success(c, h.store.Current())
}

// ToggleNightVision flips the night vision flag.
func (h *SettingsHandler) ToggleNightVision(c *gin.Context) {
	enabled, err := h.store.ToggleNightVision()
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to toggle night vision")
		response.InternalError(c, "Failed to persist settings")
		return
	}
	response.Success(c, gin.H{"NightVisionEnabled": enabled})
}

// ToggleFacialRecognition flips the facial recognition flag.
func (h *SettingsHandler) ToggleFacialRecognition(c *gin.Context) {
	enabled, err := h.store.ToggleFacialRecognition()
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to toggle facial recognition")
		response.InternalError(c, "Failed to persist settings")
		return
	}
	response.Success(c, gin.H{"FacialRecognitionEnabled": enabled})
}
