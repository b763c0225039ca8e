package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
)

// PipelineWatcher fetches the pipelines of each watched row in the
// background: once when the row is watched and again whenever the row's head
// SHA changes. Results land in the row's Pipelines cell; failures are recorded
// there, never dropped.
type PipelineWatcher struct {
	ctx      context.Context
	provider *GitLabClientProvider
	wg       sync.WaitGroup
}

// NewPipelineWatcher creates a watcher whose fetches run under ctx.
func NewPipelineWatcher(ctx context.Context, provider *GitLabClientProvider) *PipelineWatcher {
	return &PipelineWatcher{ctx: ctx, provider: provider}
}

// rowWatch tracks the fetch generation of one row so that a response for a
// superseded SHA never overwrites a newer one.
type rowWatch struct {
	mu      sync.Mutex
	started bool
	sha     string
	gen     uint64
}

// Watch starts fetching pipelines for row and returns a function that stops
// reacting to later SHA changes. An in-flight fetch still completes.
func (w *PipelineWatcher) Watch(row *Row) (stop func()) {
	rw := &rowWatch{}
	unsubscribe := row.MR.Subscribe(func(model.MergeRequest) {
		w.fetch(row, rw)
	})
	w.fetch(row, rw)
	return unsubscribe
}

// Wait blocks until all in-flight fetches have finished.
func (w *PipelineWatcher) Wait() {
	w.wg.Wait()
}

// fetch reads the row's current MR under rw.mu rather than trusting the
// notified value, which may be stale when Sets race.
func (w *PipelineWatcher) fetch(row *Row, rw *rowWatch) {
	rw.mu.Lock()
	mr := row.MR.Get()
	if rw.started && rw.sha == mr.SHA {
		rw.mu.Unlock()
		return
	}
	rw.started = true
	rw.sha = mr.SHA
	rw.gen++
	gen := rw.gen
	row.Pipelines.Set(PipelineResult{State: PipelineLoading, SHA: mr.SHA})
	rw.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		var (
			pipelines []model.Pipeline
			err       error
		)
		client := w.provider.Get()
		if client == nil {
			err = ErrNotConnected
		} else {
			pipelines, err = client.LatestPipelines(w.ctx, mr)
		}

		rw.mu.Lock()
		defer rw.mu.Unlock()
		if gen != rw.gen {
			return
		}

		if err != nil {
			slog.Error("pipeline fetch failed", "mr", mr.Reference, "sha", mr.SHA, "error", err)
			row.Pipelines.Set(PipelineResult{State: PipelineFailed, SHA: mr.SHA, Err: err})
			return
		}
		row.Pipelines.Set(PipelineResult{State: PipelineReady, SHA: mr.SHA, Pipelines: pipelines})
	}()
}
