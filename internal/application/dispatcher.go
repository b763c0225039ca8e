package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/port/driven"
)

// defaultBulkConcurrency bounds concurrent calls of a bulk action.
const defaultBulkConcurrency = 4

// Dispatcher issues close, reopen and merge calls for single rows. The server
// response replaces the row's merge request on success; on failure the error
// is recorded on the row and the merge request is left untouched.
type Dispatcher struct {
	provider        *GitLabClientProvider
	bulkConcurrency int
}

// NewDispatcher creates a Dispatcher. bulkConcurrency <= 0 selects the default.
func NewDispatcher(provider *GitLabClientProvider, bulkConcurrency int) *Dispatcher {
	if bulkConcurrency <= 0 {
		bulkConcurrency = defaultBulkConcurrency
	}
	return &Dispatcher{provider: provider, bulkConcurrency: bulkConcurrency}
}

// Dispatch runs action against row. Concurrent dispatches on the same row may
// all be in flight; the one that completes last determines the visible state.
func (d *Dispatcher) Dispatch(ctx context.Context, row *Row, action model.Action) error {
	row.Err.Set(nil)
	snapshot := row.MR.Get()

	if !snapshot.Allows(action) {
		err := fmt.Errorf("%s %s: %w", action, snapshot.Reference, model.ErrActionNotAllowed)
		row.Err.Set(err)
		return err
	}

	client := d.provider.Get()
	if client == nil {
		row.Err.Set(ErrNotConnected)
		return ErrNotConnected
	}

	updated, err := call(ctx, client, snapshot, action)
	if err != nil {
		slog.Warn("merge request action failed", "action", action, "mr", snapshot.Reference, "error", err)
		row.Err.Set(err)
		return err
	}

	row.MR.Set(updated)
	slog.Info("merge request action applied", "action", action, "mr", snapshot.Reference, "status", updated.Status)
	return nil
}

func call(ctx context.Context, client driven.GitLabClient, mr model.MergeRequest, action model.Action) (model.MergeRequest, error) {
	switch action {
	case model.ActionClose:
		return client.UpdateState(ctx, mr, model.StateEventClose)
	case model.ActionReopen:
		return client.UpdateState(ctx, mr, model.StateEventReopen)
	case model.ActionMerge:
		return client.Merge(ctx, mr)
	default:
		return model.MergeRequest{}, fmt.Errorf("unknown action %q", action)
	}
}

// BulkResult is the outcome of one entity of a bulk dispatch.
type BulkResult struct {
	ID        int
	Reference string
	Err       error
}

// DispatchAll runs action against every row independently, with bounded
// concurrency. One failure never stops the others. Results keep the order of
// rows; the returned error joins all failures.
func (d *Dispatcher) DispatchAll(ctx context.Context, rows []*Row, action model.Action) ([]BulkResult, error) {
	results := make([]BulkResult, len(rows))

	var g errgroup.Group
	g.SetLimit(d.bulkConcurrency)
	for i, row := range rows {
		g.Go(func() error {
			err := d.Dispatch(ctx, row, action)
			results[i] = BulkResult{ID: row.ID(), Reference: row.MR.Get().Reference, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Reference, r.Err))
		}
	}

	slog.Info("bulk action complete", "action", action, "count", len(rows), "failed", len(errs))
	return results, errors.Join(errs...)
}

// DispatchSelected runs action against the rows currently selected in store.
func (d *Dispatcher) DispatchSelected(ctx context.Context, store *MergeRequestStore, action model.Action) ([]BulkResult, error) {
	return d.DispatchAll(ctx, store.SelectedRows(), action)
}
