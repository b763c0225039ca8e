package model

import (
	"errors"
	"strings"
)

// PipelineStatus is the state of a CI pipeline.
//
// See: https://docs.gitlab.com/ee/api/pipelines.html#list-project-pipelines
type PipelineStatus string

const (
	PipelineStatusCreated            PipelineStatus = "created"
	PipelineStatusWaitingForResource PipelineStatus = "waiting_for_resource"
	PipelineStatusPreparing          PipelineStatus = "preparing"
	PipelineStatusPending            PipelineStatus = "pending"
	PipelineStatusRunning            PipelineStatus = "running"
	PipelineStatusSuccess            PipelineStatus = "success"
	PipelineStatusFailed             PipelineStatus = "failed"
	PipelineStatusCanceled           PipelineStatus = "canceled"
	PipelineStatusSkipped            PipelineStatus = "skipped"
	PipelineStatusManual             PipelineStatus = "manual"
	PipelineStatusScheduled          PipelineStatus = "scheduled"
)

var pipelineStatuses = map[PipelineStatus]Badge{
	PipelineStatusCreated:            {"created", ClassWarning},
	PipelineStatusWaitingForResource: {"waiting for resource", ClassWarning},
	PipelineStatusPreparing:          {"preparing", ClassWarning},
	PipelineStatusPending:            {"pending", ClassWarning},
	PipelineStatusRunning:            {"running", ClassWarning},
	PipelineStatusSuccess:            {"success", ClassSuccess},
	PipelineStatusFailed:             {"failed", ClassDanger},
	PipelineStatusCanceled:           {"cancelled", ClassWarning},
	PipelineStatusSkipped:            {"skipped", ClassWarning},
	PipelineStatusManual:             {"manual", ClassInfo},
	PipelineStatusScheduled:          {"scheduled", ClassInfo},
}

// Valid reports whether s is one of the known statuses.
func (s PipelineStatus) Valid() bool {
	_, ok := pipelineStatuses[s]
	return ok
}

// Label returns the badge label.
func (s PipelineStatus) Label() string { return s.Badge().Label }

// Class returns the badge class.
func (s PipelineStatus) Class() Class { return s.Badge().Class }

// Badge returns the label and class of the status. Unknown statuses get a
// neutral badge labelled with their own name.
func (s PipelineStatus) Badge() Badge {
	if b, ok := pipelineStatuses[s]; ok {
		return b
	}
	return Badge{Label: strings.ReplaceAll(string(s), "_", " "), Class: ClassSecondary}
}

// UnmarshalText accepts any non-empty status and keeps it verbatim.
func (s *PipelineStatus) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		return errors.New("empty pipeline status")
	}
	*s = PipelineStatus(text)
	return nil
}

// Pipeline is a CI run for a specific commit.
type Pipeline struct {
	ID     int
	SHA    string
	Ref    string // Git ref the pipeline ran on.
	Status PipelineStatus
}

// PipelinesForSHA returns the pipelines that ran against sha, preserving their
// relative order. Pipelines for older commits of the same MR are dropped.
func PipelinesForSHA(pipelines []Pipeline, sha string) []Pipeline {
	out := make([]Pipeline, 0, len(pipelines))
	for _, p := range pipelines {
		if p.SHA == sha {
			out = append(out, p)
		}
	}
	return out
}
