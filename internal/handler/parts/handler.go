package parts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inneratlas/backend/internal/middleware"
	"github.com/inneratlas/backend/internal/model/part"
	"github.com/inneratlas/backend/internal/store"
	"github.com/inneratlas/backend/pkg/utils"
)

// Handler serves the parts-mapping CRUD surface.
type Handler struct {
	store store.Repository
}

// New creates the parts handler.
func New(repo store.Repository) *Handler {
	return &Handler{store: repo}
}

// RegisterRoutes registers the parts routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/parts", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{partID}", h.handleGet)
		r.Put("/{partID}", h.handleUpdate)
		r.Delete("/{partID}", h.handleDelete)
	})
}

type partPayload struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Emotions    []string `json:"emotions"`
	Needs       []string `json:"needs"`
	Notes       string   `json:"notes"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	parts, err := h.store.ListParts(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list parts")
		return
	}
	if parts == nil {
		parts = []part.Part{}
	}
	utils.RespondJSON(w, http.StatusOK, parts)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var payload partPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Name == "" {
		utils.RespondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !part.ValidCategory(payload.Category) {
		utils.RespondError(w, http.StatusBadRequest, "unknown part category")
		return
	}

	p := part.Part{
		UserID:      userID,
		Name:        payload.Name,
		Category:    payload.Category,
		Description: payload.Description,
		Emotions:    payload.Emotions,
		Needs:       payload.Needs,
		Notes:       payload.Notes,
	}
	if err := h.store.CreatePart(r.Context(), &p); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create part")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPart(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPart(w, r)
	if !ok {
		return
	}

	var payload partPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Name == "" {
		utils.RespondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !part.ValidCategory(payload.Category) {
		utils.RespondError(w, http.StatusBadRequest, "unknown part category")
		return
	}

	p.Name = payload.Name
	p.Category = payload.Category
	p.Description = payload.Description
	p.Emotions = payload.Emotions
	p.Needs = payload.Needs
	p.Notes = payload.Notes

	if err := h.store.UpdatePart(r.Context(), p); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to update part")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPart(w, r)
	if !ok {
		return
	}

	if err := h.store.DeletePart(r.Context(), p.ID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete part")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ownedPart loads the addressed part and enforces that the caller owns it.
func (h *Handler) ownedPart(w http.ResponseWriter, r *http.Request) (*part.Part, bool) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return nil, false
	}

	p, err := h.store.GetPart(r.Context(), chi.URLParam(r, "partID"))
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "part not found")
		return nil, false
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load part")
		return nil, false
	}
	if p.UserID != userID {
		utils.RespondError(w, http.StatusForbidden, "part belongs to another user")
		return nil, false
	}
	return p, true
}
