package model

// CheckboxState is the tri-state indicator of a multi-selection.
type CheckboxState string

const (
	CheckboxUnchecked     CheckboxState = "unchecked"
	CheckboxIndeterminate CheckboxState = "indeterminate"
	CheckboxChecked       CheckboxState = "checked"
)

// CheckboxStateFor derives the indicator from the selected and total counts.
func CheckboxStateFor(selected, total int) CheckboxState {
	switch {
	case selected == 0:
		return CheckboxUnchecked
	case selected == total:
		return CheckboxChecked
	default:
		return CheckboxIndeterminate
	}
}
