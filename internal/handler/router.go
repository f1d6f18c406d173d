package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-notes/web/internal/config"
	"github.com/zhouzirui/z-notes/web/internal/handler/live"
	"github.com/zhouzirui/z-notes/web/internal/handler/notes"
	"github.com/zhouzirui/z-notes/web/internal/handler/session"
	"github.com/zhouzirui/z-notes/web/internal/handler/stream"
	"github.com/zhouzirui/z-notes/web/internal/metrics"
	middlewarePkg "github.com/zhouzirui/z-notes/web/internal/middleware"
	"github.com/zhouzirui/z-notes/web/internal/service/page"
	"github.com/zhouzirui/z-notes/web/pkg/utils"
)

// NewRouter wires HTTP routes to the notes page surfaces.
// m may be nil, in which case /metrics is not served.
func NewRouter(cfg *config.Config, client page.API, log logrus.FieldLogger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(log))
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(middlewarePkg.Token(cfg.Session.CookieName))

	sessionHandler := session.New(cfg.Session.CookieName, cfg.Session.Secure)
	notesHandler := notes.New(client, notes.Options{
		Location:       cfg.Display.Location,
		LoginURL:       cfg.Server.LoginURL,
		Logger:         log,
		OnUnauthorized: sessionHandler.Clear,
	})
	liveHandler := live.New(client, log, m)
	streamHandler := stream.New(client, log)

	// Page, creation form and modal
	notesHandler.RegisterRoutes(r)

	// Token handoff from the auth provider
	sessionHandler.RegisterRoutes(r)

	r.Group(func(api chi.Router) {
		api.Use(middlewarePkg.CORS)
		liveHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		api.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status": "ok",
				"time":   time.Now().UTC().Format(time.RFC3339),
			})
		})
	})

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	return r
}
