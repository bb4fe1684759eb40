package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	interviewHandler "github.com/prepview/backend/internal/handler/interview"
	middlewarePkg "github.com/prepview/backend/internal/middleware"
	interviewService "github.com/prepview/backend/internal/service/interview"
	"github.com/prepview/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the interview orchestrator. A nil
// orchestrator (model credentials absent) degrades every interview endpoint
// to 503 instead of refusing to boot.
func NewRouter(orchestrator *interviewService.Orchestrator) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/interview", func(api chi.Router) {
		if orchestrator == nil {
			api.HandleFunc("/*", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondErrorCode(w, http.StatusServiceUnavailable, "ai_unavailable", "interview service unavailable")
			})
			return
		}

		h := interviewHandler.New(orchestrator)
		h.RegisterRoutes(api)

		ws := interviewHandler.NewWebSocketHandler(orchestrator)
		ws.RegisterWebSocketRoutes(api)
	})

	return r
}
