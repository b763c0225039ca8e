package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/application"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON response for the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
	Time      string `json:"time"`
}

// SessionRequest is the JSON body for login and credential tests.
type SessionRequest struct {
	URL   string `json:"url" validate:"required,url"`
	Token string `json:"token" validate:"required"`
}

// SessionResponse is the JSON representation of the current connection.
type SessionResponse struct {
	Connected bool   `json:"connected"`
	Host      string `json:"host,omitempty"`
	Username  string `json:"username,omitempty"`
}

// BadgeResponse is a display label with its presentation class.
type BadgeResponse struct {
	Label       string `json:"label"`
	Class       string `json:"class"`
	Description string `json:"description,omitempty"`
}

// PipelineResponse is the JSON representation of one pipeline.
type PipelineResponse struct {
	ID     int           `json:"id"`
	Ref    string        `json:"ref"`
	Status string        `json:"status"`
	Badge  BadgeResponse `json:"badge"`
}

// PipelineSlotResponse is the pipeline fetch state of one row.
type PipelineSlotResponse struct {
	State     string             `json:"state"`
	SHA       string             `json:"sha"`
	Pipelines []PipelineResponse `json:"pipelines"`
	Error     string             `json:"error,omitempty"`
}

// MergeRequestResponse is the JSON representation of one listed merge request.
type MergeRequestResponse struct {
	ID        int                  `json:"id"`
	IID       int                  `json:"iid"`
	ProjectID int                  `json:"project_id"`
	Title     string               `json:"title"`
	Reference string               `json:"reference"`
	SHA       string               `json:"sha"`
	WebURL    string               `json:"web_url"`
	Status    string               `json:"status"`
	Badge     BadgeResponse        `json:"badge"`
	CanMerge  bool                 `json:"can_merge"`
	CanClose  bool                 `json:"can_close"`
	CanReopen bool                 `json:"can_reopen"`
	ClosedAt  *string              `json:"closed_at"`
	MergedAt  *string              `json:"merged_at"`
	Selected  bool                 `json:"selected"`
	Pipelines PipelineSlotResponse `json:"pipelines"`
	Error     string               `json:"error,omitempty"`

	// Populated only on the single merge request endpoint.
	Description     string `json:"description,omitempty"`
	DescriptionHTML string `json:"description_html,omitempty"`
}

// ListResponse is the JSON representation of the merge request listing.
type ListResponse struct {
	State         string                 `json:"state"`
	Error         string                 `json:"error,omitempty"`
	LoadedAt      *string                `json:"loaded_at"`
	Selection     string                 `json:"selection"`
	SelectedCount int                    `json:"selected_count"`
	Items         []MergeRequestResponse `json:"items"`
}

// SelectionResponse reports the selection after a change.
type SelectionResponse struct {
	Selection     string `json:"selection"`
	SelectedCount int    `json:"selected_count"`
	Selected      []int  `json:"selected"`
}

// BulkResultResponse is the outcome for one merge request of a bulk action.
type BulkResultResponse struct {
	ID        int    `json:"id"`
	Reference string `json:"reference"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// BulkResponse is the JSON response of a bulk action.
type BulkResponse struct {
	Action  string               `json:"action"`
	Failed  int                  `json:"failed"`
	Results []BulkResultResponse `json:"results"`
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func toBadgeResponse(b model.Badge) BadgeResponse {
	return BadgeResponse{Label: b.Label, Class: string(b.Class)}
}

func toPipelineSlotResponse(p application.PipelineResult) PipelineSlotResponse {
	resp := PipelineSlotResponse{
		State:     string(p.State),
		SHA:       p.SHA,
		Pipelines: make([]PipelineResponse, 0, len(p.Pipelines)),
		Error:     errString(p.Err),
	}
	for _, pl := range p.Pipelines {
		resp.Pipelines = append(resp.Pipelines, PipelineResponse{
			ID:     pl.ID,
			Ref:    pl.Ref,
			Status: string(pl.Status),
			Badge:  toBadgeResponse(pl.Status.Badge()),
		})
	}
	return resp
}

func toMergeRequestResponse(row *application.Row, selected bool) MergeRequestResponse {
	mr := row.MR.Get()
	badge := toBadgeResponse(mr.Status.Badge())
	badge.Description = mr.Status.Description()

	return MergeRequestResponse{
		ID:        mr.ID,
		IID:       mr.IID,
		ProjectID: mr.ProjectID,
		Title:     mr.Title,
		Reference: mr.Reference,
		SHA:       mr.SHA,
		WebURL:    mr.WebURL,
		Status:    string(mr.Status),
		Badge:     badge,
		CanMerge:  mr.CanMerge(),
		CanClose:  mr.CanClose(),
		CanReopen: mr.CanReopen(),
		ClosedAt:  mr.ClosedAt,
		MergedAt:  mr.MergedAt,
		Selected:  selected,
		Pipelines: toPipelineSlotResponse(row.Pipelines.Get()),
		Error:     errString(row.Err.Get()),
	}
}

func toSessionResponse(info application.SessionInfo) SessionResponse {
	return SessionResponse{
		Connected: info.Connected,
		Host:      info.Host,
		Username:  info.Username,
	}
}

func toSelectionResponse(sel *application.Selection) SelectionResponse {
	ids := sel.Selected()
	return SelectionResponse{
		Selection:     string(sel.State()),
		SelectedCount: len(ids),
		Selected:      ids,
	}
}

func toBulkResponse(action model.Action, results []application.BulkResult) BulkResponse {
	resp := BulkResponse{
		Action:  string(action),
		Results: make([]BulkResultResponse, 0, len(results)),
	}
	for _, r := range results {
		if r.Err != nil {
			resp.Failed++
		}
		resp.Results = append(resp.Results, BulkResultResponse{
			ID:        r.ID,
			Reference: r.Reference,
			OK:        r.Err == nil,
			Error:     errString(r.Err),
		})
	}
	return resp
}
