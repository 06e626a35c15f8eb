package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gyarab/2025-wt-prj-khudanych/internal/telemetry"
)

// Handler is anything that can register routes on the router.
type Handler interface {
	RegisterRoutes(router *mux.Router, logger *zap.Logger)
}

// Router wraps the mux router with rate limiting and request logging.
type Router struct {
	mux       *mux.Router
	limiter   *rate.Limiter
	telemetry *telemetry.Telemetry
	logger    *zap.Logger
}

func NewRouter(limiter *rate.Limiter, tel *telemetry.Telemetry, logger *zap.Logger, handlers []Handler) *Router {
	r := mux.NewRouter()

	if tel != nil {
		r.Handle("/metrics", tel.Handler()).Methods("GET")
	}
	for _, h := range handlers {
		h.RegisterRoutes(r, logger)
	}

	return &Router{
		mux:       r,
		limiter:   limiter,
		telemetry: tel,
		logger:    logger.Named("router"),
	}
}

// CreateServer builds the HTTP server with the middleware chain applied.
func (rt *Router) CreateServer(addr string) *http.Server {
	handler := rt.rateLimitMiddleware(rt.loggingMiddleware(rt.mux))
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (rt *Router) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if rt.limiter != nil && !rt.limiter.Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (rt *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, req)
		rt.logger.Debug("request handled",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
