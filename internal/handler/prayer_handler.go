package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/service"
)

// PrayerHandler serves the prayer request endpoints.
type PrayerHandler struct {
	prayers *service.PrayerService
	logger  zerolog.Logger
}

// NewPrayerHandler creates a new PrayerHandler.
func NewPrayerHandler(prayers *service.PrayerService, logger zerolog.Logger) *PrayerHandler {
	return &PrayerHandler{
		prayers: prayers,
		logger:  logger.With().Str("handler", "prayer").Logger(),
	}
}

// createPrayerRequest is the request body for POST /api/prayers.
type createPrayerRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Reminders   []string `json:"reminders,omitempty"`
}

// updatePrayerRequest is the request body for PATCH /api/prayers/{id}.
type updatePrayerRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	IsAnswered  *bool    `json:"isAnswered,omitempty"`
	Reminders   []string `json:"reminders,omitempty"`
}

// List handles GET /api/prayers.
func (h *PrayerHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	prayers, err := h.prayers.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prayers)
}

// Create handles POST /api/prayers.
func (h *PrayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req createPrayerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	prayer, err := h.prayers.Create(r.Context(), user.ID, service.CreatePrayerInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Reminders:   req.Reminders,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, prayer)
}

// Update handles PATCH /api/prayers/{id}.
func (h *PrayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	prayerID := chi.URLParam(r, "id")

	var req updatePrayerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	prayer, err := h.prayers.Update(r.Context(), user.ID, prayerID, service.UpdatePrayerInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		IsAnswered:  req.IsAnswered,
		Reminders:   req.Reminders,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prayer)
}
