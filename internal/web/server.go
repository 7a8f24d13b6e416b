package web

import (
	"net/http"

	"hostsman/internal/config"
	"hostsman/internal/session"
)

// Server exposes the session controller over a small JSON HTTP API. It is
// presentation glue only: every route translates a request into controller
// commands and renders the outcome.
type Server struct {
	cfg  *config.Config
	ctrl *session.Controller
	mux  *http.ServeMux
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, ctrl *session.Controller) *Server {
	server := &Server{
		cfg:  cfg,
		ctrl: ctrl,
		mux:  http.NewServeMux(),
	}

	server.setupRoutes()
	return server
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return http.ListenAndServe(s.cfg.HTTPListen, s.mux)
}

// Handler returns the route multiplexer, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/lines", s.handleLinesAPI)
	s.mux.HandleFunc("/api/entries", s.handleEntriesAPI)
	s.mux.HandleFunc("/api/profiles", s.handleProfilesAPI)
	s.mux.HandleFunc("/api/status", s.handleStatusAPI)
}
