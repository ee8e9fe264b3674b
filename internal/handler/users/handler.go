package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inneratlas/backend/internal/middleware"
	"github.com/inneratlas/backend/internal/model/user"
	"github.com/inneratlas/backend/internal/store"
	"github.com/inneratlas/backend/pkg/utils"
)

// Handler serves user profiles. Account issuance and credentials live
// upstream; this only stores profile data for verified ids.
type Handler struct {
	store store.Repository
}

// New creates the users handler.
func New(repo store.Repository) *Handler {
	return &Handler{store: repo}
}

// RegisterRoutes registers the user routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/me", h.handleGetMe)
		r.Put("/me", h.handleUpsertMe)
		r.Get("/{userID}", h.handleGet)
	})
}

func (h *Handler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}
	h.respondUser(w, r, userID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.respondUser(w, r, chi.URLParam(r, "userID"))
}

func (h *Handler) respondUser(w http.ResponseWriter, r *http.Request, id string) {
	u, err := h.store.GetUser(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	utils.RespondJSON(w, http.StatusOK, u)
}

func (h *Handler) handleUpsertMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Bio   string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Name == "" {
		utils.RespondError(w, http.StatusBadRequest, "name is required")
		return
	}

	u := user.User{
		ID:    userID,
		Name:  payload.Name,
		Email: payload.Email,
		Role:  middleware.UserRole(r.Context()),
		Bio:   payload.Bio,
	}
	if err := h.store.UpsertUser(r.Context(), &u); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}
	utils.RespondJSON(w, http.StatusOK, u)
}
