package httphandler

import (
	"errors"
	"net/http"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/application"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/port/driven"
)

// statusForError maps application and GitLab errors to a response status.
// Failures reported by GitLab itself surface as 502.
func statusForError(err error) int {
	var (
		statusErr    *driven.HTTPStatusError
		transportErr *driven.TransportError
		decodeErr    *driven.DecodeError
	)

	switch {
	case errors.Is(err, driven.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrNotConnected):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrUnknownMergeRequest):
		return http.StatusNotFound
	case errors.Is(err, model.ErrActionNotAllowed):
		return http.StatusConflict
	case errors.As(err, &statusErr), errors.As(err, &transportErr), errors.As(err, &decodeErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes err with its mapped status. Unmapped errors are logged
// and hidden behind a generic message.
func (h *Handler) writeAppError(w http.ResponseWriter, msg string, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, "error", err)
		writeError(w, status, "internal server error")
		return
	}
	h.logger.Warn(msg, "status", status, "error", err)
	writeError(w, status, err.Error())
}
