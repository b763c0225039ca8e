package model

import "fmt"

// StateEvent is the state transition requested through the MR update endpoint.
type StateEvent string

const (
	StateEventClose  StateEvent = "close"
	StateEventReopen StateEvent = "reopen"
)

// Action is a mutating command an operator can issue against one MR.
type Action string

const (
	ActionClose  Action = "close"
	ActionReopen Action = "reopen"
	ActionMerge  Action = "merge"
)

// ParseAction converts a user-supplied action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionClose, ActionReopen, ActionMerge:
		return a, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}
