package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/service"
)

// DevotionalHandler serves the devotional endpoints.
type DevotionalHandler struct {
	devotionals *service.DevotionalService
	logger      zerolog.Logger
}

// NewDevotionalHandler creates a new DevotionalHandler.
func NewDevotionalHandler(devotionals *service.DevotionalService, logger zerolog.Logger) *DevotionalHandler {
	return &DevotionalHandler{
		devotionals: devotionals,
		logger:      logger.With().Str("handler", "devotional").Logger(),
	}
}

// createDevotionalRequest is the request body for POST /api/devotionals.
type createDevotionalRequest struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Theme   string     `json:"theme,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
}

// List handles GET /api/devotionals.
func (h *DevotionalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	devotionals, err := h.devotionals.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devotionals)
}

// Create handles POST /api/devotionals.
func (h *DevotionalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req createDevotionalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := service.CreateDevotionalInput{
		Title:   req.Title,
		Content: req.Content,
		Theme:   req.Theme,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}

	devotional, err := h.devotionals.Create(r.Context(), user.ID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, devotional)
}
