package insight

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inneratlas/backend/internal/middleware"
	"github.com/inneratlas/backend/internal/service/ai"
	"github.com/inneratlas/backend/pkg/utils"
)

// Handler exposes LLM insight generation. The AI service is optional; when it
// was not configured the endpoint reports unavailability instead of failing.
type Handler struct {
	aiSvc *ai.Service
}

// New creates the insight handler. aiSvc may be nil.
func New(aiSvc *ai.Service) *Handler {
	return &Handler{aiSvc: aiSvc}
}

// RegisterRoutes registers the insight route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/insights", h.handleGenerate)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if middleware.UserID(r.Context()) == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}
	if h.aiSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "insight generation unavailable")
		return
	}

	var payload struct {
		Kind    string `json:"kind"`
		Subject string `json:"subject"`
		Prompt  string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Prompt == "" {
		utils.RespondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	result, err := h.aiSvc.GenerateInsight(r.Context(),
		ai.SystemPrompt(payload.Kind),
		ai.UserPrompt(payload.Subject, payload.Prompt))
	if err != nil {
		log.Printf("[insight] generation failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "insight generation failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}
