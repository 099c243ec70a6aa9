package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RyanLangman/CM3070-FinalProject/internal/events"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/log"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/response"
)

const defaultEventLimit = 100

// EventsHandler exposes the intrusion event history.
type EventsHandler struct {
	repo *events.Repository
}

// NewEventsHandler creates an events handler.
func NewEventsHandler(repo *events.Repository) *EventsHandler {
	return &EventsHandler{repo: repo}
}

// RegisterRoutes registers the events routes.
func (h *EventsHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/events", h.List)
	}
}

// List returns intrusion events, newest first. Accepts an optional
// date=YYYY-MM-DD filter and a limit query parameter.
func (h *EventsHandler) List(c *gin.Context) {
	var day *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			response.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		day = &parsed
	}

	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	evts, err := h.repo.List(c.Request.Context(), day, limit)
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to list intrusion events")
		response.InternalError(c, "Failed to list events")
		return
	}
	response.Success(c, gin.H{"events": evts})
}
