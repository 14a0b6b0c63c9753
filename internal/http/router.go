package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/posrecon/internal/http/health"
	"github.com/MrJamesThe3rd/posrecon/internal/http/reconcile"
	"github.com/MrJamesThe3rd/posrecon/internal/http/transaction"
	"github.com/MrJamesThe3rd/posrecon/internal/http/upload"
)

type Params struct {
	Transactions *transaction.Handler
	Upload       *upload.Handler
	Reconcile    *reconcile.Handler
	Health       *health.Handler
	Gatherer     prometheus.Gatherer
	CORSOrigins  []string

	// RequestTimeout bounds every route except the reconcile group, which gets
	// SyncTimeout so a manual pass can outlive an ordinary request. Zero disables.
	RequestTimeout time.Duration
	SyncTimeout    time.Duration
}

func New(p Params) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if len(p.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Options{
			AllowedOrigins: p.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
			MaxAge:         300,
		}).Handler)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.With(timeout(p.RequestTimeout)).Route("/transactions", func(r chi.Router) {
			p.Upload.Routes(r)
			p.Transactions.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(timeout(p.SyncTimeout))
			p.Reconcile.Routes(r)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(timeout(p.RequestTimeout))
		r.Route("/health", p.Health.Routes)

		if p.Gatherer != nil {
			r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
		}
	})

	return router
}

func timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.TimeoutHandler(next, d, "request timed out")
	}
}
