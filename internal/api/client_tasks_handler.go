package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskhub-api/internal/api/shared"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
)

// ClientFinder looks up a client by ID.
type ClientFinder interface {
	FindByID(ctx context.Context, id int64) (domain.Client, error)
}

// ClientTaskLister lists the tasks owned by a client.
type ClientTaskLister interface {
	FindByClientID(ctx context.Context, clientID int64) ([]domain.Task, error)
}

// ClientTasksHandler serves the tasks owned by one client.
type ClientTasksHandler struct {
	clients ClientFinder
	tasks   ClientTaskLister
	logger  *slog.Logger
}

// NewClientTasksHandler creates a ClientTasksHandler.
func NewClientTasksHandler(clients ClientFinder, tasks ClientTaskLister, logger *slog.Logger) *ClientTasksHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientTasksHandler{
		clients: clients,
		tasks:   tasks,
		logger:  logger,
	}
}

// ListTasks handles GET /api/clients/{id}/tasks requests.
// It responds 404 when the client itself does not exist.
func (h *ClientTasksHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	clientID, err := ParseInt64ID(chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if _, err := h.clients.FindByID(r.Context(), clientID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.FindByClientID(r.Context(), clientID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	log.Debug("listed client tasks", slog.Int64("client_id", clientID), slog.Int("count", len(tasks)))
	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}
