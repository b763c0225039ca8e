package gitlab

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
)

// listPageSize bounds the single listing page. Results beyond it are not fetched.
const listPageSize = 200

// listMergeRequestsOptions is the fixed query of the open MR listing.
type listMergeRequestsOptions struct {
	PerPage int    `url:"per_page"`
	Scope   string `url:"scope"`
	State   string `url:"state"`
	WIP     string `url:"wip"`
}

type updateStateOptions struct {
	StateEvent model.StateEvent `url:"state_event"`
}

type mergeOptions struct {
	SHA                      string `url:"sha"`
	ShouldRemoveSourceBranch bool   `url:"should_remove_source_branch"`
}

// mergeRequestJSON is the subset of the GitLab MR representation we consume.
type mergeRequestJSON struct {
	ID          int    `json:"id"`
	IID         int    `json:"iid"`
	ProjectID   int    `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	References  struct {
		Full string `json:"full"`
	} `json:"references"`
	SHA                 string                    `json:"sha"`
	WebURL              string                    `json:"web_url"`
	DetailedMergeStatus model.DetailedMergeStatus `json:"detailed_merge_status"`
	ClosedAt            *string                   `json:"closed_at"`
	MergedAt            *string                   `json:"merged_at"`
}

type pipelineJSON struct {
	ID     int                  `json:"id"`
	SHA    string               `json:"sha"`
	Ref    string               `json:"ref"`
	Status model.PipelineStatus `json:"status"`
}

type userJSON struct {
	Username string `json:"username"`
}

// CurrentUser fetches the user the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	u, err := Send[userJSON](ctx, c, http.MethodGet, "user", nil)
	if err != nil {
		return model.User{}, err
	}
	return model.User{Username: u.Username}, nil
}

// ListOpenMergeRequests fetches one page of open, non-draft merge requests
// across all projects visible to the user.
func (c *Client) ListOpenMergeRequests(ctx context.Context) ([]model.MergeRequest, error) {
	opts := listMergeRequestsOptions{
		PerPage: listPageSize,
		Scope:   "all",
		State:   "opened",
		WIP:     "no",
	}

	mrs, err := Send[[]mergeRequestJSON](ctx, c, http.MethodGet, "merge_requests", opts)
	if err != nil {
		return nil, err
	}

	result := make([]model.MergeRequest, 0, len(mrs))
	for _, mr := range mrs {
		result = append(result, mapMergeRequest(mr))
	}
	return result, nil
}

// GetMergeRequest fetches a single merge request.
func (c *Client) GetMergeRequest(ctx context.Context, projectID, iid int) (model.MergeRequest, error) {
	mr, err := Send[mergeRequestJSON](ctx, c, http.MethodGet, mergeRequestPath(projectID, iid), nil)
	if err != nil {
		return model.MergeRequest{}, err
	}
	return mapMergeRequest(mr), nil
}

// LatestPipelines fetches the pipelines of mr and keeps only those that ran
// against its current head commit. The API does not filter by SHA.
func (c *Client) LatestPipelines(ctx context.Context, mr model.MergeRequest) ([]model.Pipeline, error) {
	path := mergeRequestPath(mr.ProjectID, mr.IID) + "/pipelines"
	pipelines, err := Send[[]pipelineJSON](ctx, c, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	all := make([]model.Pipeline, 0, len(pipelines))
	for _, p := range pipelines {
		all = append(all, model.Pipeline{ID: p.ID, SHA: p.SHA, Ref: p.Ref, Status: p.Status})
	}
	return model.PipelinesForSHA(all, mr.SHA), nil
}

// UpdateState closes or reopens mr.
func (c *Client) UpdateState(ctx context.Context, mr model.MergeRequest, event model.StateEvent) (model.MergeRequest, error) {
	opts := updateStateOptions{StateEvent: event}
	updated, err := Send[mergeRequestJSON](ctx, c, http.MethodPut, mergeRequestPath(mr.ProjectID, mr.IID), opts)
	if err != nil {
		return model.MergeRequest{}, err
	}
	return mapMergeRequest(updated), nil
}

// Merge merges mr. Passing the last known head SHA makes GitLab reject the
// merge if the source branch moved since the operator last saw it.
func (c *Client) Merge(ctx context.Context, mr model.MergeRequest) (model.MergeRequest, error) {
	opts := mergeOptions{SHA: mr.SHA, ShouldRemoveSourceBranch: true}
	path := mergeRequestPath(mr.ProjectID, mr.IID) + "/merge"
	merged, err := Send[mergeRequestJSON](ctx, c, http.MethodPut, path, opts)
	if err != nil {
		return model.MergeRequest{}, err
	}
	return mapMergeRequest(merged), nil
}

func mergeRequestPath(projectID, iid int) string {
	return fmt.Sprintf("projects/%d/merge_requests/%d", projectID, iid)
}

// mapMergeRequest converts the wire representation to the domain model.
func mapMergeRequest(mr mergeRequestJSON) model.MergeRequest {
	return model.MergeRequest{
		ID:          mr.ID,
		IID:         mr.IID,
		ProjectID:   mr.ProjectID,
		Title:       mr.Title,
		Description: mr.Description,
		Reference:   mr.References.Full,
		SHA:         mr.SHA,
		WebURL:      mr.WebURL,
		Status:      mr.DetailedMergeStatus,
		ClosedAt:    mr.ClosedAt,
		MergedAt:    mr.MergedAt,
	}
}
