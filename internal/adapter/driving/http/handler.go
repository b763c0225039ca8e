// Package httphandler implements the JSON REST API driving adapter.
package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/application"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	store      *application.MergeRequestStore
	dispatcher *application.Dispatcher
	sessions   *application.SessionService
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	store *application.MergeRequestStore,
	dispatcher *application.Dispatcher,
	sessions *application.SessionService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		store:      store,
		dispatcher: dispatcher,
		sessions:   sessions,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger,
	}
}

// NewRouter creates an http.Handler with all routes registered and wrapped
// with request ID, logging and recovery middleware.
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(loggingMiddleware(logger))
	// Recovery innermost so panics are caught before logging.
	r.Use(recoveryMiddleware(logger))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Get("/session", h.GetSession)
		r.Post("/session", h.Connect)
		r.Post("/session/test", h.TestSession)
		r.Delete("/session", h.Logout)

		r.Get("/merge-requests", h.ListMergeRequests)
		r.Post("/merge-requests/refresh", h.ReloadMergeRequests)
		r.Get("/merge-requests/{id}", h.GetMergeRequest)
		r.Post("/merge-requests/{id}/{action}", h.ApplyAction)

		r.Put("/selection", h.SelectAll)
		r.Delete("/selection", h.SelectNone)
		r.Post("/selection/{id}", h.ToggleSelection)
		r.Post("/selection/actions/{action}", h.ApplyBulkAction)
	})

	return r
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Connected: h.sessions.Current().Connected,
		Time:      time.Now().UTC().Format(time.RFC3339),
	})
}
