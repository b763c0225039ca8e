package httphandler

import (
	"context"
	"net/http"
)

// ToggleSelection flips the selection of one merge request.
func (h *Handler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if _, err := h.store.Selection().Toggle(id); err != nil {
		h.writeAppError(w, "selection toggle failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toSelectionResponse(h.store.Selection()))
}

// SelectAll selects every listed merge request.
func (h *Handler) SelectAll(w http.ResponseWriter, _ *http.Request) {
	h.store.Selection().SelectAll()
	writeJSON(w, http.StatusOK, toSelectionResponse(h.store.Selection()))
}

// SelectNone clears the selection.
func (h *Handler) SelectNone(w http.ResponseWriter, _ *http.Request) {
	h.store.Selection().SelectNone()
	writeJSON(w, http.StatusOK, toSelectionResponse(h.store.Selection()))
}

// ApplyBulkAction runs an action against every selected merge request. Each
// result is reported individually; partial failure still returns 200.
func (h *Handler) ApplyBulkAction(w http.ResponseWriter, r *http.Request) {
	action, ok := parseAction(w, r)
	if !ok {
		return
	}

	results, err := h.dispatcher.DispatchSelected(context.WithoutCancel(r.Context()), h.store, action)
	if err != nil {
		h.logger.Warn("bulk action had failures", "action", action, "error", err)
	}

	writeJSON(w, http.StatusOK, toBulkResponse(action, results))
}
