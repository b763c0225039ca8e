package model

import "errors"

// ErrActionNotAllowed is returned when an action is requested on a merge
// request whose current state does not permit it.
var ErrActionNotAllowed = errors.New("action not allowed in the current merge request state")

// MergeRequest is one fetched snapshot of a GitLab merge request.
//
// See: https://docs.gitlab.com/ee/api/merge_requests.html
type MergeRequest struct {
	ID          int // Global ID; identifies the MR in the store and the selection.
	IID         int // Project-scoped ID; used in API paths.
	ProjectID   int
	Title       string
	Description string
	Reference   string // Full reference, e.g. "group/project!123".
	SHA         string // Head commit of the source branch.
	WebURL      string
	Status      DetailedMergeStatus
	// ClosedAt and MergedAt are GitLab timestamps passed through verbatim;
	// only their presence is interpreted.
	ClosedAt *string
	MergedAt *string
}

// CanMerge reports whether GitLab considers the MR mergeable right now.
func (mr MergeRequest) CanMerge() bool {
	return mr.Status == MergeStatusMergeable
}

// CanClose reports whether the MR is still open.
func (mr MergeRequest) CanClose() bool {
	return mr.Status != MergeStatusNotOpen
}

// CanReopen reports whether the MR was closed without being merged.
func (mr MergeRequest) CanReopen() bool {
	return mr.ClosedAt != nil && mr.MergedAt == nil
}

// Allows reports whether the given action is currently legal for the MR.
func (mr MergeRequest) Allows(a Action) bool {
	switch a {
	case ActionClose:
		return mr.CanClose()
	case ActionReopen:
		return mr.CanReopen()
	case ActionMerge:
		return mr.CanMerge()
	default:
		return false
	}
}
