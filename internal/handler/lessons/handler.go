package lessons

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inneratlas/backend/internal/middleware"
	"github.com/inneratlas/backend/internal/model/lesson"
	"github.com/inneratlas/backend/internal/store"
	"github.com/inneratlas/backend/pkg/utils"
)

// Handler serves the psychoeducation curriculum and per-user progress.
type Handler struct {
	store store.Repository
}

// New creates the lessons handler.
func New(repo store.Repository) *Handler {
	return &Handler{store: repo}
}

// RegisterRoutes registers the lesson routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/lessons", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/progress", h.handleListProgress)
		r.Get("/{lessonID}", h.handleGet)
		r.Put("/{lessonID}/progress", h.handleUpsertProgress)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.store.ListLessons(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list lessons")
		return
	}
	if lessons == nil {
		lessons = []lesson.Lesson{}
	}
	utils.RespondJSON(w, http.StatusOK, lessons)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	l, err := h.store.GetLesson(r.Context(), chi.URLParam(r, "lessonID"))
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "lesson not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load lesson")
		return
	}
	utils.RespondJSON(w, http.StatusOK, l)
}

func (h *Handler) handleUpsertProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	lessonID := chi.URLParam(r, "lessonID")
	if _, err := h.store.GetLesson(r.Context(), lessonID); errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "lesson not found")
		return
	} else if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load lesson")
		return
	}

	var payload struct {
		Completed bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	progress := lesson.Progress{
		UserID:    userID,
		LessonID:  lessonID,
		Completed: payload.Completed,
	}
	if payload.Completed {
		now := time.Now().UTC()
		progress.CompletedAt = &now
	}

	if err := h.store.UpsertLessonProgress(r.Context(), &progress); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save progress")
		return
	}
	utils.RespondJSON(w, http.StatusOK, progress)
}

func (h *Handler) handleListProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	progress, err := h.store.ListLessonProgress(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list progress")
		return
	}
	if progress == nil {
		progress = []lesson.Progress{}
	}
	utils.RespondJSON(w, http.StatusOK, progress)
}
