// Package server provides HTTP server initialization and lifecycle management
// for the navigator web UI.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ritualgrammar/navigator/internal/config"
	"github.com/ritualgrammar/navigator/internal/engine"
	"github.com/ritualgrammar/navigator/web/handlers"
)

// securityHeadersMiddleware adds security headers to all HTTP responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// NewHandler builds the routed and middleware-wrapped handler tree. hub may be
// nil, in which case /ws is not served.
func NewHandler(cfg *config.Config, nav handlers.Navigator, status handlers.StatusReporter, hub *handlers.WebSocketHub) (http.Handler, error) {
	pages, err := handlers.NewPages()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	navigation := handlers.NewNavigationHandlers(nav, pages)
	sparql := handlers.NewSPARQLHandlers(nav, pages)
	details := handlers.NewDetailsHandler(nav)
	health := handlers.NewHealthHandler(status)

	mux := http.NewServeMux()

	// HTML pages
	mux.HandleFunc("/", navigation.Index)
	mux.HandleFunc("/navigate/", navigation.NavigatePage(false))
	mux.HandleFunc("/navigate/inferred/", navigation.NavigatePage(true))
	mux.HandleFunc("/navigate/events/", navigation.EventsPage)
	mux.HandleFunc("/sparql/", sparql.Page)
	mux.HandleFunc("/details/", details.GetDetails)

	// API routes (require auth in production mode)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/navigation", navigation.APINavigation)
	apiMux.HandleFunc("/api/navigation/events", navigation.APIEvents)
	apiMux.HandleFunc("/api/sparql", sparql.Query)
	apiMux.HandleFunc("/api/details", details.GetDetails)
	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// Health endpoint - no auth required, used by monitoring
	mux.HandleFunc("/api/health", health.GetHealth)

	// WebSocket endpoint (no auth required - origin validation handles security)
	if hub != nil {
		mux.Handle("/ws", hub)
	}

	rateLimiter := handlers.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)

	var handler http.Handler = mux
	handler = handlers.RateLimitMiddleware(handler, rateLimiter)
	handler = handlers.AccessLogMiddleware(handler)
	handler = handlers.RequestIDMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	return handler, nil
}

// Start initializes and starts the HTTP server.
// Returns the actual address being listened on (useful for testing with port 0)
// and the WebSocketHub that receives store status broadcasts. The server shuts
// down gracefully when ctx is cancelled.
func Start(ctx context.Context, cfg *config.Config, nav *engine.Navigator) (string, *handlers.WebSocketHub, error) {
	cache := nav.Cache()

	wsHub := handlers.NewWebSocketHub(
		cfg.Addr(),
		fmt.Sprintf("localhost:%d", cfg.Server.Port),
	)
	go wsHub.Run()
	cache.Watch(wsHub.PublishStoreStatus)

	handler, err := NewHandler(cfg, nav, cache, wsHub)
	if err != nil {
		wsHub.Stop()
		return "", nil, err
	}

	// Create server with security timeouts. Writes allow for a cold
	// inference run behind the first request.
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Reasoner.InferenceTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		wsHub.Stop()
		return "", nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	if cfg.Server.WarmOnStart {
		cache.Warm()
	}

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		wsHub.Stop()
		if err := cache.Close(); err != nil {
			slog.Error("store cache close error", "error", err)
		}
	}()

	return actualAddr, wsHub, nil
}
