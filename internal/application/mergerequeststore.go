package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
)

var (
	// ErrNotConnected is returned when no GitLab client has been configured.
	ErrNotConnected = errors.New("not connected to GitLab")
	// ErrUnknownMergeRequest is returned for IDs that are not part of the
	// current listing.
	ErrUnknownMergeRequest = errors.New("merge request not in the current listing")
)

// ListState is the lifecycle of the merge request listing.
type ListState string

const (
	ListIdle    ListState = "idle"
	ListLoading ListState = "loading"
	ListReady   ListState = "ready"
	ListFailed  ListState = "failed"
)

// PipelineState is the lifecycle of one row's pipeline fetch.
type PipelineState string

const (
	PipelineIdle    PipelineState = "idle"
	PipelineLoading PipelineState = "loading"
	PipelineReady   PipelineState = "ready"
	PipelineFailed  PipelineState = "failed"
)

// PipelineResult is the pipeline slot of a row. SHA is the head commit the
// fetch was issued for.
type PipelineResult struct {
	State     PipelineState
	SHA       string
	Pipelines []model.Pipeline
	Err       error
}

// Row is one listed merge request. Each part is its own Cell so that updating
// one row never touches its siblings.
type Row struct {
	id        int
	MR        *Cell[model.MergeRequest]
	Pipelines *Cell[PipelineResult]
	Err       *Cell[error] // Last action or refresh failure; nil when none.
}

// NewRow wraps mr in a fresh row.
func NewRow(mr model.MergeRequest) *Row {
	return &Row{
		id:        mr.ID,
		MR:        NewCell(mr),
		Pipelines: NewCell(PipelineResult{State: PipelineIdle}),
		Err:       NewCell[error](nil),
	}
}

// ID returns the global MR ID the row was created for.
func (r *Row) ID() int {
	return r.id
}

// ListSnapshot is a consistent view of the store.
type ListSnapshot struct {
	State    ListState
	Rows     []*Row
	Err      error
	LoadedAt time.Time
}

// MergeRequestStore owns the listed merge requests and the selection over
// them for one listing session, until the next Load.
type MergeRequestStore struct {
	provider *GitLabClientProvider
	watcher  *PipelineWatcher

	mu       sync.RWMutex
	state    ListState
	rows     []*Row
	byID     map[int]*Row
	err      error
	loadedAt time.Time
	gen      uint64
	stops    []func()

	selection *Selection
}

// NewMergeRequestStore creates an idle store. watcher may be nil, in which
// case no pipelines are fetched.
func NewMergeRequestStore(provider *GitLabClientProvider, watcher *PipelineWatcher) *MergeRequestStore {
	return &MergeRequestStore{
		provider:  provider,
		watcher:   watcher,
		state:     ListIdle,
		byID:      make(map[int]*Row),
		selection: NewSelection(),
	}
}

// Load fetches the open merge requests and replaces the collection. The store
// is Loading while the call is pending, then Ready or Failed. The selection is
// cleared and rebuilt over the new IDs. If another Load starts before this one
// finishes, the older result is discarded.
func (s *MergeRequestStore) Load(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.stopWatchesLocked()
	s.state = ListLoading
	s.rows = nil
	s.byID = make(map[int]*Row)
	s.err = nil
	s.selection.Reset(nil)
	s.mu.Unlock()

	var (
		mrs []model.MergeRequest
		err error
	)
	client := s.provider.Get()
	if client == nil {
		err = ErrNotConnected
	} else {
		mrs, err = client.ListOpenMergeRequests(ctx)
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return err
	}
	if err != nil {
		s.state = ListFailed
		s.err = err
		s.mu.Unlock()
		slog.Error("merge request listing failed", "error", err)
		return err
	}

	rows := make([]*Row, 0, len(mrs))
	ids := make([]int, 0, len(mrs))
	for _, mr := range mrs {
		if _, dup := s.byID[mr.ID]; dup {
			continue
		}
		row := NewRow(mr)
		rows = append(rows, row)
		ids = append(ids, mr.ID)
		s.byID[mr.ID] = row
	}
	s.rows = rows
	s.state = ListReady
	s.loadedAt = time.Now()
	s.selection.Reset(ids)

	if s.watcher != nil {
		for _, row := range rows {
			s.stops = append(s.stops, s.watcher.Watch(row))
		}
	}
	s.mu.Unlock()

	slog.Info("merge requests loaded", "count", len(rows))
	return nil
}

// Reset returns the store to Idle, dropping rows and selection. Used on logout.
func (s *MergeRequestStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.stopWatchesLocked()
	s.state = ListIdle
	s.rows = nil
	s.byID = make(map[int]*Row)
	s.err = nil
	s.selection.Reset(nil)
}

func (s *MergeRequestStore) stopWatchesLocked() {
	for _, stop := range s.stops {
		stop()
	}
	s.stops = nil
}

// Snapshot returns the current state, rows and listing error.
func (s *MergeRequestStore) Snapshot() ListSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ListSnapshot{
		State:    s.state,
		Rows:     append([]*Row(nil), s.rows...),
		Err:      s.err,
		LoadedAt: s.loadedAt,
	}
}

// Row returns the row for the given MR ID.
func (s *MergeRequestStore) Row(id int) (*Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.byID[id]
	return row, ok
}

// Selection returns the selection over the current listing.
func (s *MergeRequestStore) Selection() *Selection {
	return s.selection
}

// SelectedRows returns the rows of the selected IDs in listing order.
func (s *MergeRequestStore) SelectedRows() []*Row {
	ids := s.selection.Selected()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]*Row, 0, len(ids))
	for _, id := range ids {
		if row, ok := s.byID[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// Refresh re-fetches one merge request and replaces its row state with the
// server's representation. On failure the error is recorded on the row and
// the previous state is kept.
func (s *MergeRequestStore) Refresh(ctx context.Context, id int) (*Row, error) {
	row, ok := s.Row(id)
	if !ok {
		return nil, ErrUnknownMergeRequest
	}

	client := s.provider.Get()
	if client == nil {
		row.Err.Set(ErrNotConnected)
		return row, ErrNotConnected
	}

	current := row.MR.Get()
	mr, err := client.GetMergeRequest(ctx, current.ProjectID, current.IID)
	if err != nil {
		row.Err.Set(err)
		return row, err
	}

	row.Err.Set(nil)
	row.MR.Set(mr)
	return row, nil
}
