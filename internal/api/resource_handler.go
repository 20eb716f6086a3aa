package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskhub-api/internal/api/shared"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
	"github.com/phrazzld/taskhub-api/internal/store"
)

// IDParser converts the {id} path parameter into a repository identifier.
// It should return an error wrapping domain.ErrInvalidID for malformed input.
type IDParser[ID comparable] func(raw string) (ID, error)

// ResourceHandler exposes a store.Repository as REST endpoints:
//
//	GET    /      list every entity
//	GET    /{id}  fetch one entity
//	POST   /      insert or update (upsert) an entity
//	PUT    /      same as POST
//	DELETE /{id}  remove an entity
//
// It holds no per-request state; the name is used only in log records.
type ResourceHandler[T any, ID comparable] struct {
	name    string
	repo    store.Repository[T, ID]
	parseID IDParser[ID]
	logger  *slog.Logger
}

// NewResourceHandler creates a ResourceHandler for one entity type.
// If logger is nil, the default logger is used.
func NewResourceHandler[T any, ID comparable](
	name string,
	repo store.Repository[T, ID],
	parseID IDParser[ID],
	logger *slog.Logger,
) *ResourceHandler[T, ID] {
	if repo == nil {
		panic("repo cannot be nil")
	}
	if parseID == nil {
		panic("parseID cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ResourceHandler[T, ID]{
		name:    name,
		repo:    repo,
		parseID: parseID,
		logger:  logger,
	}
}

// Routes returns a router with the resource's endpoints, ready to be
// mounted at the resource's base path. Callers may add further routes to it.
func (h *ResourceHandler[T, ID]) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Upsert)
	r.Put("/", h.Upsert)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	return r
}

// Name returns the resource's display name.
func (h *ResourceHandler[T, ID]) Name() string {
	return h.name
}

// log returns the request-scoped logger annotated with the resource name.
func (h *ResourceHandler[T, ID]) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger).With(slog.String("resource", h.name))
}

// List handles GET / requests.
func (h *ResourceHandler[T, ID]) List(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	log.Debug("list items")

	items, err := h.repo.FindAll(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list "+h.name)
		return
	}
	if items == nil {
		items = []T{}
	}

	log.Debug("listed items", slog.Int("count", len(items)))
	shared.RespondWithJSON(w, r, http.StatusOK, items)
}

// Get handles GET /{id} requests.
func (h *ResourceHandler[T, ID]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.log(r).Debug("get item", slog.Any("id", id))

	item, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, item)
}

// Upsert handles POST / and PUT / requests. An entity without an ID is
// inserted; one with an ID overwrites the stored row.
func (h *ResourceHandler[T, ID]) Upsert(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	log.Debug("update item")

	var entity T
	if err := shared.DecodeJSON(w, r, &entity); err != nil {
		log.Debug("invalid request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&entity); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	saved, err := h.repo.Save(r.Context(), entity)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save "+h.name)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, saved)
}

// Delete handles DELETE /{id} requests.
func (h *ResourceHandler[T, ID]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.log(r).Debug("delete item", slog.Any("id", id))

	if err := h.repo.DeleteByID(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} path parameter, writing a 400 response on failure.
func (h *ResourceHandler[T, ID]) pathID(w http.ResponseWriter, r *http.Request) (ID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := h.parseID(raw)
	if err != nil {
		h.log(r).Debug("invalid id", slog.String("value", raw), slog.String("error", err.Error()))
		HandleAPIError(w, r, domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID), "")
		var zero ID
		return zero, false
	}
	return id, true
}

// MountResource mounts h at pattern on r. Each extra function may register
// additional routes on the resource's subrouter before it is mounted.
func MountResource[T any, ID comparable](r chi.Router, pattern string, h *ResourceHandler[T, ID], extra ...func(chi.Router)) {
	routes := h.Routes()
	for _, fn := range extra {
		fn(routes)
	}
	r.Mount(pattern, routes)
}
