package wellness

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inneratlas/backend/internal/middleware"
	"github.com/inneratlas/backend/internal/model/wellness"
	"github.com/inneratlas/backend/internal/store"
	"github.com/inneratlas/backend/pkg/utils"
)

// Handler serves activity logging, grounding-technique progress and anxiety
// check-ins.
type Handler struct {
	store store.Repository
}

// New creates the wellness handler.
func New(repo store.Repository) *Handler {
	return &Handler{store: repo}
}

// RegisterRoutes registers the wellness routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/wellness", func(r chi.Router) {
		r.Get("/activities", h.handleListActivities)
		r.Post("/activities", h.handleCreateActivity)
		r.Get("/grounding", h.handleListGrounding)
		r.Put("/grounding", h.handleUpsertGrounding)
		r.Get("/checkins", h.handleListCheckIns)
		r.Post("/checkins", h.handleCreateCheckIn)
	})
}

func (h *Handler) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var payload struct {
		Kind       string     `json:"kind"`
		Notes      string     `json:"notes"`
		OccurredAt *time.Time `json:"occurredAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Kind == "" {
		utils.RespondError(w, http.StatusBadRequest, "kind is required")
		return
	}

	a := wellness.Activity{
		UserID: userID,
		Kind:   payload.Kind,
		Notes:  payload.Notes,
	}
	if payload.OccurredAt != nil {
		a.OccurredAt = payload.OccurredAt.UTC()
	}

	if err := h.store.CreateActivity(r.Context(), &a); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to log activity")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, a)
}

func (h *Handler) handleListActivities(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	activities, err := h.store.ListActivities(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}
	if activities == nil {
		activities = []wellness.Activity{}
	}
	utils.RespondJSON(w, http.StatusOK, activities)
}

func (h *Handler) handleUpsertGrounding(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var payload struct {
		Technique string `json:"technique"`
		Step      int    `json:"step"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Technique == "" {
		utils.RespondError(w, http.StatusBadRequest, "technique is required")
		return
	}
	if payload.Step < 0 {
		utils.RespondError(w, http.StatusBadRequest, "step must not be negative")
		return
	}

	g := wellness.GroundingProgress{
		UserID:    userID,
		Technique: payload.Technique,
		Step:      payload.Step,
	}
	if err := h.store.UpsertGrounding(r.Context(), &g); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save grounding progress")
		return
	}
	utils.RespondJSON(w, http.StatusOK, g)
}

func (h *Handler) handleListGrounding(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	progress, err := h.store.ListGrounding(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list grounding progress")
		return
	}
	if progress == nil {
		progress = []wellness.GroundingProgress{}
	}
	utils.RespondJSON(w, http.StatusOK, progress)
}

func (h *Handler) handleCreateCheckIn(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var payload struct {
		Level int    `json:"level"`
		Note  string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Level < 1 || payload.Level > 10 {
		utils.RespondError(w, http.StatusBadRequest, "level must be between 1 and 10")
		return
	}

	c := wellness.CheckIn{
		UserID: userID,
		Level:  payload.Level,
		Note:   payload.Note,
	}
	if err := h.store.CreateCheckIn(r.Context(), &c); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save check-in")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleListCheckIns(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	checkins, err := h.store.ListCheckIns(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list check-ins")
		return
	}
	if checkins == nil {
		checkins = []wellness.CheckIn{}
	}
	utils.RespondJSON(w, http.StatusOK, checkins)
}
