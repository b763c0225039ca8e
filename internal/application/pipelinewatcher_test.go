package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/application"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/port/driven"
)

func newWatcher(client *mockGitLabClient) *application.PipelineWatcher {
	provider := application.NewGitLabClientProvider(client, "alice")
	return application.NewPipelineWatcher(context.Background(), provider)
}

func TestPipelineWatcher_FetchesForHeadSHA(t *testing.T) {
	client := &mockGitLabClient{
		pipelines: func(_ context.Context, mr model.MergeRequest) ([]model.Pipeline, error) {
			return []model.Pipeline{{ID: 1, SHA: mr.SHA, Status: model.PipelineStatusSuccess}}, nil
		},
	}
	watcher := newWatcher(client)
	row := application.NewRow(openMR(1, "abc"))

	stop := watcher.Watch(row)
	defer stop()
	watcher.Wait()

	got := row.Pipelines.Get()
	assert.Equal(t, application.PipelineReady, got.State)
	assert.Equal(t, "abc", got.SHA)
	require.Len(t, got.Pipelines, 1)
	assert.Equal(t, model.PipelineStatusSuccess, got.Pipelines[0].Status)
}

func TestPipelineWatcher_RefetchesOnlyWhenSHAChanges(t *testing.T) {
	client := &mockGitLabClient{}
	watcher := newWatcher(client)
	row := application.NewRow(openMR(1, "abc"))

	stop := watcher.Watch(row)
	defer stop()
	watcher.Wait()

	mr := row.MR.Get()
	mr.Status = model.MergeStatusNotOpen
	row.MR.Set(mr)
	watcher.Wait()

	mr.SHA = "def"
	row.MR.Set(mr)
	watcher.Wait()

	calls, _ := client.calls()
	assert.Equal(t, []string{"abc", "def"}, calls)
	assert.Equal(t, "def", row.Pipelines.Get().SHA)
}

func TestPipelineWatcher_FailureIsRecorded(t *testing.T) {
	client := &mockGitLabClient{
		pipelines: func(context.Context, model.MergeRequest) ([]model.Pipeline, error) {
			return nil, &driven.HTTPStatusError{Status: 403, Body: "forbidden"}
		},
	}
	watcher := newWatcher(client)
	row := application.NewRow(openMR(1, "abc"))

	stop := watcher.Watch(row)
	defer stop()
	watcher.Wait()

	got := row.Pipelines.Get()
	assert.Equal(t, application.PipelineFailed, got.State)
	var statusErr *driven.HTTPStatusError
	require.ErrorAs(t, got.Err, &statusErr)
	assert.Equal(t, 403, statusErr.Status)
}

func TestPipelineWatcher_StaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	client := &mockGitLabClient{
		pipelines: func(_ context.Context, mr model.MergeRequest) ([]model.Pipeline, error) {
			if mr.SHA == "old" {
				<-release
				return nil, errors.New("late failure")
			}
			return []model.Pipeline{{ID: 2, SHA: mr.SHA, Status: model.PipelineStatusRunning}}, nil
		},
	}
	watcher := newWatcher(client)
	row := application.NewRow(openMR(1, "old"))

	stop := watcher.Watch(row)
	defer stop()

	mr := row.MR.Get()
	mr.SHA = "new"
	row.MR.Set(mr)

	close(release)
	watcher.Wait()

	got := row.Pipelines.Get()
	assert.Equal(t, application.PipelineReady, got.State)
	assert.Equal(t, "new", got.SHA)
	assert.NoError(t, got.Err)
}

func TestPipelineWatcher_StopEndsWatching(t *testing.T) {
	client := &mockGitLabClient{}
	watcher := newWatcher(client)
	row := application.NewRow(openMR(1, "abc"))

	stop := watcher.Watch(row)
	watcher.Wait()
	stop()

	mr := row.MR.Get()
	mr.SHA = "def"
	row.MR.Set(mr)
	watcher.Wait()

	calls, _ := client.calls()
	assert.Equal(t, []string{"abc"}, calls)
}

func TestPipelineWatcher_RacingSetsSettleOnLatestSHA(t *testing.T) {
	client := &mockGitLabClient{}
	watcher := newWatcher(client)
	row := application.NewRow(openMR(1, "a"))

	// Holds the notification of "b" until "c" has been set and delivered.
	entered := make(chan struct{})
	gate := make(chan struct{})
	var once sync.Once
	row.MR.Subscribe(func(mr model.MergeRequest) {
		if mr.SHA == "b" {
			once.Do(func() {
				close(entered)
				<-gate
			})
		}
	})

	stop := watcher.Watch(row)
	defer stop()
	watcher.Wait()

	done := make(chan struct{})
	go func() {
		defer close(done)
		mr := row.MR.Get()
		mr.SHA = "b"
		row.MR.Set(mr)
	}()
	<-entered

	mr := row.MR.Get()
	mr.SHA = "c"
	row.MR.Set(mr)

	close(gate)
	<-done
	watcher.Wait()

	calls, _ := client.calls()
	assert.Equal(t, []string{"a", "c"}, calls)
	assert.Equal(t, "c", row.Pipelines.Get().SHA)
	assert.Equal(t, application.PipelineReady, row.Pipelines.Get().State)
}
