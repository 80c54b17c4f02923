package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/service"
)

// VerseHandler serves the verse memorization endpoints.
type VerseHandler struct {
	verses *service.VerseService
	logger zerolog.Logger
}

// NewVerseHandler creates a new VerseHandler.
func NewVerseHandler(verses *service.VerseService, logger zerolog.Logger) *VerseHandler {
	return &VerseHandler{
		verses: verses,
		logger: logger.With().Str("handler", "verse").Logger(),
	}
}

// createVerseRequest is the request body for POST /api/verses.
type createVerseRequest struct {
	Reference string `json:"reference"`
	Content   string `json:"content"`
}

// updateVerseRequest is the request body for PATCH /api/verses/{id}.
type updateVerseRequest struct {
	Reference    *string    `json:"reference,omitempty"`
	Content      *string    `json:"content,omitempty"`
	Progress     *int       `json:"progress,omitempty"`
	LastReviewed *time.Time `json:"lastReviewed,omitempty"`
}

// List handles GET /api/verses.
func (h *VerseHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	verses, err := h.verses.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verses)
}

// Create handles POST /api/verses.
func (h *VerseHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req createVerseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	verse, err := h.verses.Create(r.Context(), user.ID, service.CreateVerseInput{
		Reference: req.Reference,
		Content:   req.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, verse)
}

// Update handles PATCH /api/verses/{id}.
func (h *VerseHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	verseID := chi.URLParam(r, "id")

	var req updateVerseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	verse, err := h.verses.Update(r.Context(), user.ID, verseID, service.UpdateVerseInput{
		Reference:    req.Reference,
		Content:      req.Content,
		Progress:     req.Progress,
		LastReviewed: req.LastReviewed,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verse)
}
