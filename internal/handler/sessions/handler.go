package sessions

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inneratlas/backend/internal/middleware"
	"github.com/inneratlas/backend/internal/model/session"
	"github.com/inneratlas/backend/internal/store"
	"github.com/inneratlas/backend/pkg/utils"
)

// Handler serves therapy session records and persisted chat history. The
// history listing is the REST half of the realtime channel: clients fetch it
// on entry and de-duplicate by message id against live broadcasts.
type Handler struct {
	store store.Repository
}

// New creates the sessions handler.
func New(repo store.Repository) *Handler {
	return &Handler{store: repo}
}

// RegisterRoutes registers the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{sessionID}", h.handleGet)
		r.Patch("/{sessionID}/status", h.handleUpdateStatus)
		r.Get("/{sessionID}/messages", h.handleListMessages)
		r.Post("/{sessionID}/messages", h.handleCreateMessage)
	})
}

type createPayload struct {
	TherapistID string `json:"therapistId"`
	ClientID    string `json:"clientId"`
	Title       string `json:"title"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.TherapistID == "" || payload.ClientID == "" {
		utils.RespondError(w, http.StatusBadRequest, "therapistId and clientId are required")
		return
	}
	if userID != payload.TherapistID && userID != payload.ClientID {
		utils.RespondError(w, http.StatusForbidden, "caller must participate in the session")
		return
	}

	sess := session.Session{
		TherapistID: payload.TherapistID,
		ClientID:    payload.ClientID,
		Title:       payload.Title,
	}
	if err := h.store.CreateSession(r.Context(), &sess); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, sess)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	sessions, err := h.store.ListSessionsForUser(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	utils.RespondJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.participantSession(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.participantSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !session.ValidStatus(payload.Status) {
		utils.RespondError(w, http.StatusBadRequest, "unknown session status")
		return
	}

	if err := h.store.UpdateSessionStatus(r.Context(), sess.ID, payload.Status); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	sess.Status = payload.Status
	utils.RespondJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.participantSession(w, r)
	if !ok {
		return
	}

	messages, err := h.store.ListMessages(r.Context(), sess.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []session.ChatMessage{}
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.participantSession(w, r)
	if !ok {
		return
	}
	userID := middleware.UserID(r.Context())

	var payload struct {
		Content     string `json:"content"`
		MessageType string `json:"messageType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role := session.RoleClient
	if userID == sess.TherapistID {
		role = session.RoleTherapist
	}

	msg, err := h.store.CreateMessage(r.Context(), sess.ID, userID, role, payload.MessageType, payload.Content)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save message")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, msg)
}

// participantSession loads the addressed session and enforces that the caller
// is its therapist or client.
func (h *Handler) participantSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "missing identity")
		return nil, false
	}

	sess, err := h.store.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load session")
		return nil, false
	}
	if userID != sess.TherapistID && userID != sess.ClientID {
		utils.RespondError(w, http.StatusForbidden, "caller does not participate in this session")
		return nil, false
	}
	return sess, true
}
