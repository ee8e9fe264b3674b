package journal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inneratlas/backend/internal/middleware"
	"github.com/inneratlas/backend/internal/model/journal"
	"github.com/inneratlas/backend/internal/store"
	"github.com/inneratlas/backend/pkg/utils"
)

// Handler serves the journal CRUD surface.
type Handler struct {
	store store.Repository
}

// New creates the journal handler.
func New(repo store.Repository) *Handler {
	return &Handler{store: repo}
}

// RegisterRoutes registers the journal routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/journal", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{entryID}", h.handleGet)
		r.Put("/{entryID}", h.handleUpdate)
		r.Delete("/{entryID}", h.handleDelete)
	})
}

type entryPayload struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Mood    string   `json:"mood"`
	Tags    []string `json:"tags"`
	PartIDs []string `json:"partIds"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	entries, err := h.store.ListEntries(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list entries")
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	utils.RespondJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var payload entryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Content == "" {
		utils.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	e := journal.Entry{
		UserID:  userID,
		Title:   payload.Title,
		Content: payload.Content,
		Mood:    payload.Mood,
		Tags:    payload.Tags,
		PartIDs: payload.PartIDs,
	}
	if err := h.store.CreateEntry(r.Context(), &e); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create entry")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, e)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	e, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, e)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	e, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}

	var payload entryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Content == "" {
		utils.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	e.Title = payload.Title
	e.Content = payload.Content
	e.Mood = payload.Mood
	e.Tags = payload.Tags
	e.PartIDs = payload.PartIDs

	if err := h.store.UpdateEntry(r.Context(), e); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to update entry")
		return
	}
	utils.RespondJSON(w, http.StatusOK, e)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	e, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteEntry(r.Context(), e.ID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete entry")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) ownedEntry(w http.ResponseWriter, r *http.Request) (*journal.Entry, bool) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return nil, false
	}

	e, err := h.store.GetEntry(r.Context(), chi.URLParam(r, "entryID"))
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "entry not found")
		return nil, false
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load entry")
		return nil, false
	}
	if e.UserID != userID {
		utils.RespondError(w, http.StatusForbidden, "entry belongs to another user")
		return nil, false
	}
	return e, true
}
