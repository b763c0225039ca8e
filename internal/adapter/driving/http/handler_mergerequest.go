package httphandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/application"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
)

// ListMergeRequests returns the current listing with per-row state.
func (h *Handler) ListMergeRequests(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.listResponse())
}

// ReloadMergeRequests re-fetches the listing from GitLab.
func (h *Handler) ReloadMergeRequests(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Load(r.Context()); err != nil {
		h.writeAppError(w, "failed to load merge requests", err)
		return
	}
	writeJSON(w, http.StatusOK, h.listResponse())
}

func (h *Handler) listResponse() ListResponse {
	snap := h.store.Snapshot()
	sel := h.store.Selection()

	resp := ListResponse{
		State:     string(snap.State),
		Error:     errString(snap.Err),
		LoadedAt:  formatTime(snap.LoadedAt),
		Selection: string(sel.State()),
		Items:     make([]MergeRequestResponse, 0, len(snap.Rows)),
	}
	for _, row := range snap.Rows {
		selected := sel.IsSelected(row.ID())
		if selected {
			resp.SelectedCount++
		}
		resp.Items = append(resp.Items, toMergeRequestResponse(row, selected))
	}
	return resp
}

// GetMergeRequest refreshes one merge request from GitLab and returns it with
// its rendered description.
func (h *Handler) GetMergeRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	row, err := h.store.Refresh(r.Context(), id)
	if err != nil {
		h.writeAppError(w, "failed to refresh merge request", err)
		return
	}

	resp := toMergeRequestResponse(row, h.store.Selection().IsSelected(id))
	resp.Description = row.MR.Get().Description
	resp.DescriptionHTML = RenderMarkdown(resp.Description)

	writeJSON(w, http.StatusOK, resp)
}

// ApplyAction closes, reopens or merges one merge request.
func (h *Handler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	action, ok := parseAction(w, r)
	if !ok {
		return
	}

	row, found := h.store.Row(id)
	if !found {
		h.writeAppError(w, "merge request action failed", application.ErrUnknownMergeRequest)
		return
	}

	// The call runs to completion even if the caller goes away.
	if err := h.dispatcher.Dispatch(context.WithoutCancel(r.Context()), row, action); err != nil {
		h.writeAppError(w, "merge request action failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toMergeRequestResponse(row, h.store.Selection().IsSelected(id)))
}

func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid merge request id")
		return 0, false
	}
	return id, true
}

func parseAction(w http.ResponseWriter, r *http.Request) (model.Action, bool) {
	action, err := model.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return action, true
}
