package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dgallion1/sidetoc/internal/config"
	"github.com/dgallion1/sidetoc/internal/site"
)

// Server is the HTTP front of the article site.
type Server struct {
	router chi.Router
	lib    *site.Library
	hub    *Hub
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. hub may be nil when
// live reload is off.
func NewServer(lib *site.Library, hub *Hub, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		lib: lib,
		hub: hub,
		log: log,
		cfg: cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	// Pages.
	r.Get("/", s.handleIndex)
	r.Get("/articles/{slug}", s.handleArticle)

	// JSON API, readable cross-origin.
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/articles/{slug}/outline", s.handleOutline)
		r.Get("/stats/render", s.handleRenderStats)
	})

	if s.hub != nil {
		r.Get("/ws/reload", s.hub.ServeHTTP)
	}

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir))))

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
