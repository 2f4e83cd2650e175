package httpx

import (
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/deepankarpant15/BanterBox/internal/app"
	"github.com/deepankarpant15/BanterBox/pkg/ratelimit"
)

type Middleware struct {
	cors   *cors.Cors
	rlimit *ratelimit.Limiter
}

// NewMiddleware builds the shared middleware stack from config
func NewMiddleware(cfg app.Config) *Middleware {
	return &Middleware{
		cors: cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSAllow,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}),
		rlimit: ratelimit.New(30, time.Minute), // 30 req/min default
	}
}

// Wrap applies CORS + rate limiting to a handler
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	return m.cors.Handler(m.rlimit.Middleware(h))
}
