package httpx

import (
	"net/http"

	"log/slog"

	"github.com/deepankarpant15/BanterBox/internal/app"
	"github.com/deepankarpant15/BanterBox/internal/store"
	"github.com/deepankarpant15/BanterBox/internal/ws"
	"github.com/deepankarpant15/BanterBox/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, hub *ws.Hub, db *store.Postgres) http.Handler {
	mw := NewMiddleware(cfg)
	api := &RoomsAPI{DB: db, Rooms: hub, Limit: cfg.HistoryLimit}

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint
	mux.Handle("/ws", http.HandlerFunc(hub.ServeWS))

	// Room read endpoints
	mux.Handle("GET /api/rooms/{room}/history", http.HandlerFunc(api.History))
	mux.Handle("GET /api/rooms/{room}/users", http.HandlerFunc(api.Users))

	// CORS + rate limit applied globally
	return mw.Wrap(mux)
}
