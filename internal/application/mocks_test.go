package application_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockGitLabClient struct {
	endpoint    model.Endpoint
	currentUser func(ctx context.Context) (model.User, error)
	listMRs     func(ctx context.Context) ([]model.MergeRequest, error)
	getMR       func(ctx context.Context, projectID, iid int) (model.MergeRequest, error)
	pipelines   func(ctx context.Context, mr model.MergeRequest) ([]model.Pipeline, error)
	updateState func(ctx context.Context, mr model.MergeRequest, event model.StateEvent) (model.MergeRequest, error)
	merge       func(ctx context.Context, mr model.MergeRequest) (model.MergeRequest, error)

	mu            sync.Mutex
	pipelineCalls []string
	actionCalls   int
}

func (m *mockGitLabClient) Endpoint() model.Endpoint {
	return m.endpoint
}

func (m *mockGitLabClient) CurrentUser(ctx context.Context) (model.User, error) {
	if m.currentUser == nil {
		return model.User{Username: "alice"}, nil
	}
	return m.currentUser(ctx)
}

func (m *mockGitLabClient) ListOpenMergeRequests(ctx context.Context) ([]model.MergeRequest, error) {
	if m.listMRs == nil {
		return nil, nil
	}
	return m.listMRs(ctx)
}

func (m *mockGitLabClient) GetMergeRequest(ctx context.Context, projectID, iid int) (model.MergeRequest, error) {
	return m.getMR(ctx, projectID, iid)
}

func (m *mockGitLabClient) LatestPipelines(ctx context.Context, mr model.MergeRequest) ([]model.Pipeline, error) {
	m.mu.Lock()
	m.pipelineCalls = append(m.pipelineCalls, mr.SHA)
	m.mu.Unlock()
	if m.pipelines == nil {
		return nil, nil
	}
	return m.pipelines(ctx, mr)
}

func (m *mockGitLabClient) UpdateState(ctx context.Context, mr model.MergeRequest, event model.StateEvent) (model.MergeRequest, error) {
	m.mu.Lock()
	m.actionCalls++
	m.mu.Unlock()
	return m.updateState(ctx, mr, event)
}

func (m *mockGitLabClient) Merge(ctx context.Context, mr model.MergeRequest) (model.MergeRequest, error) {
	m.mu.Lock()
	m.actionCalls++
	m.mu.Unlock()
	return m.merge(ctx, mr)
}

func (m *mockGitLabClient) calls() (pipelines []string, actions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.pipelineCalls...), m.actionCalls
}

type mockConnector struct {
	client     *mockGitLabClient
	connectErr error
	connected  []model.Endpoint
	restored   []model.Endpoint
}

func (m *mockConnector) Connect(baseURL, token string) (driven.GitLabClient, error) {
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	m.connected = append(m.connected, model.Endpoint{URL: baseURL, Token: token})
	m.client.endpoint = model.Endpoint{URL: baseURL + "/api/v4/", Token: token}
	return m.client, nil
}

func (m *mockConnector) Restore(ep model.Endpoint) (driven.GitLabClient, error) {
	m.restored = append(m.restored, ep)
	m.client.endpoint = ep
	return m.client, nil
}

type mockSessionStore struct {
	saved   *model.Endpoint
	saveErr error
	loadErr error
	cleared int
}

func (m *mockSessionStore) Save(_ context.Context, ep model.Endpoint) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &ep
	return nil
}

func (m *mockSessionStore) Load(_ context.Context) (*model.Endpoint, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.saved, nil
}

func (m *mockSessionStore) Clear(_ context.Context) error {
	m.saved = nil
	m.cleared++
	return nil
}

// openMR returns an open, mergeable merge request with the given ID.
func openMR(id int, sha string) model.MergeRequest {
	return model.MergeRequest{
		ID:        id,
		IID:       id % 100,
		ProjectID: 7,
		Title:     "MR",
		Reference: fmt.Sprintf("group/app!%d", id),
		SHA:       sha,
		Status:    model.MergeStatusMergeable,
	}
}
