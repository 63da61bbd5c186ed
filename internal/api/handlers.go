package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/lifenote/internal/apperr"
	"github.com/starford/lifenote/internal/models"
)

// NoteService is the repository the handlers call into.
type NoteService interface {
	Append(ctx context.Context, d models.Draft) (*models.Note, error)
	ListForYear(ctx context.Context, year int) ([]models.Note, error)
}

// Handler holds API route handlers.
type Handler struct {
	svc  NoteService
	year func() int
}

// NewHandler creates a new Handler. year supplies the default year for
// listings.
func NewHandler(svc NoteService, year func() int) *Handler {
	return &Handler{svc: svc, year: year}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List the notes of one year, most recent first
//	@Tags			notes
//	@Produce		json
//	@Param			year	query		int		false	"Calendar year (defaults to the current year)"
//	@Success		200		{object}	NoteListResponse
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	year := h.year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("year must be a positive integer"))
			return
		}
		year = y
	}

	notes, err := h.svc.ListForYear(r.Context(), year)
	if err != nil {
		slog.Error("list notes failed", slog.Int("year", year), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, noticeBody(err))
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Year: year, Notes: notes, Total: len(notes)})
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Append a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	note, err := h.svc.Append(r.Context(), req.Draft())
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, noticeBody(err))
			return
		}
		slog.Error("create note failed", slog.String("topic", string(req.Topic)), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, noticeBody(err))
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// Topics handles GET /api/topics.
//
//	@Summary		List the fixed note topics
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	TopicsResponse
//	@Router			/topics [get]
func (h *Handler) Topics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TopicsResponse{Topics: models.Topics, Default: models.DefaultTopic})
}
