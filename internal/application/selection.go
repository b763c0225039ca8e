package application

import (
	"sync"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
)

// Selection is a set of merge request IDs, always a subset of the IDs seen in
// the last successful listing. It is never persisted and never triggers
// network calls by itself.
type Selection struct {
	mu       sync.Mutex
	universe []int
	known    map[int]struct{}
	selected map[int]struct{}
}

// NewSelection creates an empty selection over an empty universe.
func NewSelection() *Selection {
	return &Selection{
		known:    make(map[int]struct{}),
		selected: make(map[int]struct{}),
	}
}

// Reset replaces the universe with ids and clears the selection.
func (s *Selection) Reset(ids []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.universe = append([]int(nil), ids...)
	s.known = make(map[int]struct{}, len(ids))
	for _, id := range ids {
		s.known[id] = struct{}{}
	}
	s.selected = make(map[int]struct{})
}

// Toggle adds id to the selection or removes it, and reports whether id is
// selected afterwards. IDs outside the universe are rejected.
func (s *Selection) Toggle(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.known[id]; !ok {
		return false, ErrUnknownMergeRequest
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return false, nil
	}
	s.selected[id] = struct{}{}
	return true, nil
}

// SelectAll selects every ID of the universe.
func (s *Selection) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = make(map[int]struct{}, len(s.universe))
	for _, id := range s.universe {
		s.selected[id] = struct{}{}
	}
}

// SelectNone clears the selection.
func (s *Selection) SelectNone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[int]struct{})
}

// IsSelected reports whether id is selected.
func (s *Selection) IsSelected(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[id]
	return ok
}

// Selected returns the selected IDs in listing order.
func (s *Selection) Selected() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.selected))
	for _, id := range s.universe {
		if _, ok := s.selected[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// State returns the tri-state indicator for the selection.
func (s *Selection) State() model.CheckboxState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CheckboxStateFor(len(s.selected), len(s.universe))
}
