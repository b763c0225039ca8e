package driven

import (
	"context"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
)

// GitLabClient defines the driven port for the GitLab REST API v4. Every
// failure is one of ConfigError, TransportError, HTTPStatusError or DecodeError.
type GitLabClient interface {
	// Endpoint returns the API root and credential the client talks to.
	Endpoint() model.Endpoint

	// CurrentUser returns the user the credential belongs to.
	CurrentUser(ctx context.Context) (model.User, error)
	// ListOpenMergeRequests returns at most one page (200) of open, non-draft
	// merge requests visible to the user.
	ListOpenMergeRequests(ctx context.Context) ([]model.MergeRequest, error)
	// GetMergeRequest fetches a single merge request.
	GetMergeRequest(ctx context.Context, projectID, iid int) (model.MergeRequest, error)
	// LatestPipelines returns the pipelines of mr that ran against mr.SHA.
	LatestPipelines(ctx context.Context, mr model.MergeRequest) ([]model.Pipeline, error)

	// UpdateState closes or reopens mr and returns the server's representation.
	UpdateState(ctx context.Context, mr model.MergeRequest, event model.StateEvent) (model.MergeRequest, error)
	// Merge merges mr at mr.SHA, removing the source branch.
	Merge(ctx context.Context, mr model.MergeRequest) (model.MergeRequest, error)
}

// GitLabConnector builds GitLabClients. Connect normalizes a user-supplied base
// URL; Restore rebuilds a client from a previously obtained Endpoint verbatim.
type GitLabConnector interface {
	Connect(baseURL, token string) (GitLabClient, error)
	Restore(ep model.Endpoint) (GitLabClient, error)
}
