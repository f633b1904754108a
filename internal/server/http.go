// Package server assembles the HTTP router and owns the server lifecycle.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	audithandler "assetbase/backend/internal/audit/handler"
	identityhandler "assetbase/backend/internal/identity/handler"
	"assetbase/backend/internal/platform/rbac"
	"assetbase/backend/internal/server/middleware"
	"assetbase/backend/internal/server/respond"
)

// Pinger reports database reachability for the readiness endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options bundles everything the router needs. Audit may be nil; then the
// audit read API is not mounted.
type Options struct {
	Auth          *identityhandler.HTTPHandler
	Audit         *audithandler.HTTPHandler
	Authenticator *middleware.Authenticator
	DB            Pinger
	Logger        *zap.Logger
	CORSOrigins   []string
}

// NewRouter builds the full route tree. The refresh endpoint sits outside the
// auth middleware: it authenticates with the refresh cookie, not an access
// token.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(opts.DB))

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/login", opts.Auth.Login)
		r.Post("/refresh", opts.Auth.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(opts.Authenticator.Require)
			r.Post("/logout", opts.Auth.Logout)
			r.Post("/logout-all", opts.Auth.LogoutAll)
			r.Get("/sessions", opts.Auth.Sessions)
			r.Get("/me", opts.Auth.Me)
		})
	})

	if opts.Audit != nil {
		r.Route("/v1/audit", func(r chi.Router) {
			r.Use(opts.Authenticator.Require)
			r.Use(middleware.RequirePermission(rbac.PermAuditRead))
			r.Get("/logs", opts.Audit.List)
		})
	}

	return r
}

// New returns an http.Server with sane timeouts around the router.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz reports ready only when the database answers a ping.
func readyz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			respond.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			respond.Error(w, http.StatusServiceUnavailable, "not_ready", "database unreachable")
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// requestLogger emits one structured line per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
