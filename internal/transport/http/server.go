package http

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
	sloghttp "github.com/samber/slog-http"
)

// FeedGenerator renders a subscriber's delivered archive
type FeedGenerator interface {
	GenerateFeed(ctx context.Context, subscriberID string, baseURL string) (*feeds.Feed, error)
}

// Server serves health checks, archive feeds and the platform webhooks
type Server struct {
	port   string
	feeds  FeedGenerator
	mux    *http.ServeMux
	server *http.Server
	logger *slog.Logger
}

// New creates a new HTTP server
func New(port string, feeds FeedGenerator) *Server {
	s := &Server{
		port:   port,
		feeds:  feeds,
		mux:    http.NewServeMux(),
		logger: slog.Default(),
	}

	s.mux.HandleFunc("GET /rss/{subscriberID}", s.handleRSSFeed)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleRoot)

	return s
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Mount registers an additional handler, such as a platform webhook.
// It must be called before Start.
func (s *Server) Mount(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// Handler returns the routed handler wrapped in recovery and access logging
func (s *Server) Handler() http.Handler {
	handler := sloghttp.Recovery(s.mux)
	return sloghttp.New(s.logger)(handler)
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.port)
	s.logger.Info("HTTP server starting", "addr", addr)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones until ctx ends
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRSSFeed(w http.ResponseWriter, r *http.Request) {
	subscriberID := r.PathValue("subscriberID")
	if subscriberID == "" {
		http.Error(w, "Subscriber ID is required", http.StatusBadRequest)
		return
	}

	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	feed, err := s.feeds.GenerateFeed(r.Context(), subscriberID, baseURL)
	if stderrors.Is(err, errors.ErrSubscriberNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("Error generating feed", "subscriber_id", subscriberID, "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}
	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	html := `<!DOCTYPE html>
<html>
<head>
    <title>Trend Digest Bot</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #333; }
        .info { background: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0; }
        code { background: #e8e8e8; padding: 2px 6px; border-radius: 3px; }
    </style>
</head>
<body>
    <h1>Trend Digest Bot</h1>
    <div class="info">
        <p>This service delivers scheduled trending-topic digests to chat subscribers.</p>
        <p>Every delivered digest is archived as an RSS feed: <code>/rss/{subscriberID}</code></p>
        <p>Send <code>/start</code> to the bot to subscribe.</p>
    </div>
    <p><a href="/health">Health Check</a></p>
</body>
</html>`
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
