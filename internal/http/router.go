// Package httpapi assembles the feature routers behind a shared middleware
// chain. Transport concerns live here; handlers delegate to services.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carelink/internal/auth"
	"carelink/internal/platform/metrics"
	"carelink/internal/platform/middleware"
	"carelink/internal/presence"
	"carelink/internal/registry"
	"carelink/internal/snapshot"
	"carelink/internal/vitals"
	"carelink/pkg/platform/httputil"
)

// Deps carries everything the router mounts.
type Deps struct {
	Registry  registry.RegistryService
	Auth      auth.AuthService
	Presence  presence.PresenceService
	Vitals    vitals.VitalsService
	Snapshots snapshot.SnapshotService
	Validator middleware.TokenValidator
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Health    func() map[string]string
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Latency(deps.Metrics))
	}
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	registryHandler := registry.NewHandler(deps.Registry, deps.Logger)
	authHandler := auth.NewHandler(deps.Auth, deps.Logger)
	presenceHandler := presence.NewHandler(deps.Presence, deps.Logger)
	vitalsHandler := vitals.NewHandler(deps.Vitals, deps.Logger)
	snapshotHandler := snapshot.NewHandler(deps.Snapshots, deps.Logger)

	r.Group(func(public chi.Router) {
		public.Use(middleware.ContentTypeJSON)

		public.Group(func(authed chi.Router) {
			authed.Use(middleware.RequireAuth(deps.Validator, deps.Logger))

			authHandler.Register(public, authed)
			registryHandler.Register(public, authed)
			presenceHandler.Register(authed)
			vitalsHandler.Register(authed)
			snapshotHandler.Register(authed)
		})
	})

	return r
}

func handleHealth(health func() map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		if health != nil {
			checks = health()
		}
		status := http.StatusOK
		for _, state := range checks {
			if state != "ok" {
				status = http.StatusServiceUnavailable
			}
		}
		httputil.WriteJSON(w, status, map[string]any{
			"status": statusWord(status),
			"checks": checks,
		})
	}
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
