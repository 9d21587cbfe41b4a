package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hongminglow/taskboard-be/internal/auth"
	"github.com/hongminglow/taskboard-be/internal/config"
	"github.com/hongminglow/taskboard-be/internal/http/handlers"
	"github.com/hongminglow/taskboard-be/internal/http/respond"
	"github.com/hongminglow/taskboard-be/internal/middleware"
	"github.com/hongminglow/taskboard-be/internal/service"
	"github.com/hongminglow/taskboard-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, users storage.UserStore, tasks storage.TaskStore, log *zap.SugaredLogger) *Server {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	accounts := service.NewAccounts(users, auth.NewBcryptHasher(cfg.BcryptCost), tokens, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusNotFound, respond.KindNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, respond.KindValidation, "method not allowed")
	})

	pinger, _ := users.(handlers.Pinger)
	handlers.NewHealthHandler(time.Now(), pinger).Register(r)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", handlers.NewAuthHandler(accounts).Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens))
			r.Route("/profile", handlers.NewProfileHandler(service.NewProfiles(users, log)).Register)
			r.Route("/tasks", handlers.NewTaskHandler(service.NewTasks(tasks, log)).Register)
		})
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Handler exposes the routed handler, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
