package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/inneratlas/backend/internal/config"
	insightHandler "github.com/inneratlas/backend/internal/handler/insight"
	journalHandler "github.com/inneratlas/backend/internal/handler/journal"
	lessonsHandler "github.com/inneratlas/backend/internal/handler/lessons"
	partsHandler "github.com/inneratlas/backend/internal/handler/parts"
	realtimeHandler "github.com/inneratlas/backend/internal/handler/realtime"
	sessionsHandler "github.com/inneratlas/backend/internal/handler/sessions"
	usersHandler "github.com/inneratlas/backend/internal/handler/users"
	wellnessHandler "github.com/inneratlas/backend/internal/handler/wellness"
	middlewarePkg "github.com/inneratlas/backend/internal/middleware"
	"github.com/inneratlas/backend/internal/realtime"
	"github.com/inneratlas/backend/internal/service/ai"
	"github.com/inneratlas/backend/internal/store"
	"github.com/inneratlas/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. aiSvc may be nil when the LLM
// is not configured.
func NewRouter(repo store.Repository, manager *realtime.Manager, aiSvc *ai.Service, cors config.CORSConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cors.AllowedOrigins))
	r.Use(middlewarePkg.Identity)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Ping(r.Context()); err != nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		usersHandler.New(repo).RegisterRoutes(api)
		partsHandler.New(repo).RegisterRoutes(api)
		journalHandler.New(repo).RegisterRoutes(api)
		sessionsHandler.New(repo).RegisterRoutes(api)
		lessonsHandler.New(repo).RegisterRoutes(api)
		wellnessHandler.New(repo).RegisterRoutes(api)
		insightHandler.New(aiSvc).RegisterRoutes(api)
		realtimeHandler.New(manager).RegisterRoutes(api)
	})

	return r
}
