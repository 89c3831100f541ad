package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pagedeck/pagedeck/pkg/governor"
	"github.com/pagedeck/pagedeck/pkg/httpserver"
	"github.com/pagedeck/pagedeck/pkg/pg"
	"github.com/pagedeck/pagedeck/pkg/plugin"
	"github.com/pagedeck/pagedeck/pkg/redis"
	"github.com/pagedeck/pagedeck/pkg/tenant"
)

// maxExtensionBody caps the request payload forwarded into a plugin worker.
const maxExtensionBody = 1 << 20

// defaultWorkerBudget applies when a request reaches an extension route
// without a plan-bound worker budget in context.
const defaultWorkerBudget = 2 * time.Second

func newRouter(
	ctx context.Context,
	log *slog.Logger,
	resolver *tenant.Resolver,
	gov *governor.Governor,
	supervisor *plugin.Supervisor,
	pool *pgxpool.Pool,
	redisClient *goredis.Client,
) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))

	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(resolver))
		r.Use(gov.Middleware())

		r.Get("/ext/{plugin}", describeExtension(supervisor))
		r.Handle("/ext/{plugin}/*", callExtension(supervisor))
	})

	return r
}

// callExtension forwards the request to the plugin's registered route. The
// worker budget comes from the resolved plan, so a slow extension burns its
// own tenant's time and nobody else's.
func callExtension(supervisor *plugin.Supervisor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pluginID := chi.URLParam(r, "plugin")
		path := "/" + chi.URLParam(r, "*")

		var payload json.RawMessage
		if r.Body != nil {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxExtensionBody))
			if err != nil {
				http.Error(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			if len(body) > 0 {
				payload = body
			}
		}

		budget := governor.WorkerBudget(r.Context(), defaultWorkerBudget)
		reply, err := supervisor.CallRoute(r.Context(), pluginID, r.Method, path, payload, budget)
		if err != nil {
			writeExtensionError(w, err)
			return
		}

		if len(reply.Result) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(reply.Result)
	}
}

// describeExtension reports the plugin's state and what it registered.
func describeExtension(supervisor *plugin.Supervisor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pluginID := chi.URLParam(r, "plugin")

		descriptor, err := supervisor.Describe(pluginID)
		if err != nil {
			writeExtensionError(w, err)
			return
		}
		registrations, err := supervisor.ListRegistrations(pluginID)
		if err != nil {
			writeExtensionError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"plugin": descriptor,
			"hooks":  registrations.Hooks,
			"routes": registrations.Routes,
		})
	}
}

func writeExtensionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, plugin.ErrPluginNotLoaded),
		errors.Is(err, plugin.ErrNotRegistered),
		errors.Is(err, plugin.ErrModuleNotFound),
		errors.Is(err, plugin.ErrInvalidPluginID):
		http.Error(w, "extension not found", http.StatusNotFound)
	case errors.Is(err, plugin.ErrWorkerTimeout):
		http.Error(w, "extension timed out", http.StatusGatewayTimeout)
	case errors.Is(err, plugin.ErrWorkerCrashed), errors.Is(err, plugin.ErrCallFailed):
		http.Error(w, "extension failed", http.StatusBadGateway)
	case errors.Is(err, plugin.ErrSupervisorClosed):
		http.Error(w, "service is shutting down", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
