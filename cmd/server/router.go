package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskhub-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskhub-api/internal/api/middleware"
	"github.com/phrazzld/taskhub-api/internal/api/shared"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthTimeout bounds the database ping made by /health.
const healthTimeout = 2 * time.Second

// setupRouter creates the router with middleware, resource endpoints,
// /health and /metrics.
func (app *application) setupRouter() (http.Handler, error) {
	metrics, err := apiMiddleware.NewMetrics(app.registry)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.RequestLogger)
	r.Use(metrics.Handler)
	r.Use(middleware.Recoverer)

	clients := api.NewResourceHandler[domain.Client, int64]("clients", app.stores.Clients, api.ParseInt64ID, app.logger)
	tasks := api.NewResourceHandler[domain.Task, int64]("tasks", app.stores.Tasks, api.ParseInt64ID, app.logger)
	clientTasks := api.NewClientTasksHandler(app.stores.Clients, app.stores.Tasks, app.logger)

	r.Route("/api", func(r chi.Router) {
		api.MountResource(r, "/clients", clients, func(r chi.Router) {
			r.Get("/{id}/tasks", clientTasks.ListTasks)
		})
		api.MountResource(r, "/tasks", tasks)
	})

	r.Get("/health", app.health)
	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	return r, nil
}

// health reports 200 when the database answers a ping and 503 otherwise.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("failed to write health check response", "error", err)
	}
}
