package dashboard

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/clydeside/ticketwatch/internal/store"
	sloghttp "github.com/samber/slog-http"
)

// Server serves the dashboard and the match feed during watch mode.
type Server struct {
	port    string
	history *store.History
	logger  *slog.Logger
}

func NewServer(port string, history *store.History) *Server {
	return &Server{
		port:    port,
		history: history,
		logger:  slog.Default(),
	}
}

func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleDashboard)
	mux.HandleFunc("GET /feed.xml", s.handleFeed)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	addr := fmt.Sprintf(":%s", s.port)
	s.logger.Info("Dashboard server starting", "addr", addr)

	// Use slog-http middleware with recovery
	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, Render(s.history.All(), time.Now()))
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	baseURL := fmt.Sprintf("%s://%s", scheme(r), r.Host)

	rss, err := Feed(s.history.All(), baseURL, time.Now()).ToRss()
	if err != nil {
		s.logger.Error("Error rendering match feed", "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	fmt.Fprint(w, rss)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}
