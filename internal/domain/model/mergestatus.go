package model

import (
	"errors"
	"strings"
)

// DetailedMergeStatus is GitLab's fine-grained mergeability classification of a
// merge request.
//
// See: https://docs.gitlab.com/ee/api/merge_requests.html#merge-status
type DetailedMergeStatus string

const (
	MergeStatusApprovalsSyncing       DetailedMergeStatus = "approvals_syncing"
	MergeStatusBlocked                DetailedMergeStatus = "blocked_status"
	MergeStatusChecking               DetailedMergeStatus = "checking"
	MergeStatusCIMustPass             DetailedMergeStatus = "ci_must_pass"
	MergeStatusCIStillRunning         DetailedMergeStatus = "ci_still_running"
	MergeStatusConflict               DetailedMergeStatus = "conflict"
	MergeStatusDiscussionsNotResolved DetailedMergeStatus = "discussions_not_resolved"
	MergeStatusDraft                  DetailedMergeStatus = "draft_status"
	MergeStatusExternalStatusChecks   DetailedMergeStatus = "external_status_checks"
	MergeStatusJiraAssociationMissing DetailedMergeStatus = "jira_association_missing"
	MergeStatusMergeable              DetailedMergeStatus = "mergeable"
	MergeStatusNeedRebase             DetailedMergeStatus = "need_rebase"
	MergeStatusNotApproved            DetailedMergeStatus = "not_approved"
	MergeStatusNotOpen                DetailedMergeStatus = "not_open"
	MergeStatusRequestedChanges       DetailedMergeStatus = "requested_changes"
	MergeStatusUnchecked              DetailedMergeStatus = "unchecked"
)

type mergeStatusInfo struct {
	label       string
	description string
	class       Class
}

var mergeStatuses = map[DetailedMergeStatus]mergeStatusInfo{
	MergeStatusApprovalsSyncing:       {"approvals syncing", "The merge request's approvals are syncing.", ClassWarning},
	MergeStatusBlocked:                {"blocked", "Blocked by another merge request.", ClassDanger},
	MergeStatusChecking:               {"checking", "Git is testing if a valid merge is possible.", ClassWarning},
	MergeStatusCIMustPass:             {"CI must pass", "A CI/CD pipeline must succeed before merge.", ClassDanger},
	MergeStatusCIStillRunning:         {"CI still running", "A CI/CD pipeline is still running.", ClassWarning},
	MergeStatusConflict:               {"conflict", "Conflicts exist between the source and target branches.", ClassDanger},
	MergeStatusDiscussionsNotResolved: {"discussions not resolved", "All discussions must be resolved before merge.", ClassDanger},
	MergeStatusDraft:                  {"draft", "Can't merge because the merge request is a draft.", ClassDanger},
	MergeStatusExternalStatusChecks:   {"external checks", "All status checks must pass before merge.", ClassDanger},
	MergeStatusJiraAssociationMissing: {"jira association missing", "The title or description must reference a Jira issue.", ClassWarning},
	MergeStatusMergeable:              {"mergeable", "The branch can merge cleanly into the target branch.", ClassSuccess},
	MergeStatusNeedRebase:             {"need rebase", "The merge request must be rebased.", ClassDanger},
	MergeStatusNotApproved:            {"not approved", "Approval is required before merge.", ClassDanger},
	MergeStatusNotOpen:                {"not open", "The merge request must be open before merge.", ClassDanger},
	MergeStatusRequestedChanges:       {"changes requested", "The merge request has reviewers who have requested changes.", ClassDanger},
	MergeStatusUnchecked:              {"unchecked", "Git has not yet tested if a valid merge is possible.", ClassWarning},
}

// Valid reports whether s is one of the known statuses.
func (s DetailedMergeStatus) Valid() bool {
	_, ok := mergeStatuses[s]
	return ok
}

// Label returns the short human-readable label shown on the status badge.
// Statuses outside the known set are labelled with their own name.
func (s DetailedMergeStatus) Label() string {
	if !s.Valid() {
		return strings.ReplaceAll(string(s), "_", " ")
	}
	return mergeStatuses[s].label
}

// Description returns the long-form explanation of the status.
func (s DetailedMergeStatus) Description() string {
	return mergeStatuses[s].description
}

// Class returns the display severity of the status.
func (s DetailedMergeStatus) Class() Class {
	if !s.Valid() {
		return ClassSecondary
	}
	return mergeStatuses[s].class
}

// Badge returns the label and class of the status.
func (s DetailedMergeStatus) Badge() Badge {
	return Badge{Label: s.Label(), Class: s.Class()}
}

// UnmarshalText accepts any non-empty status. GitLab adds statuses over time;
// an unknown one is kept verbatim, never mergeable, and shown with a neutral
// badge instead of failing the whole listing.
func (s *DetailedMergeStatus) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		return errors.New("empty detailed merge status")
	}
	*s = DetailedMergeStatus(text)
	return nil
}
