package model

// Class is the display severity of a status badge. It never affects control flow.
type Class string

const (
	ClassSecondary Class = "secondary"
	ClassSuccess   Class = "success"
	ClassDanger    Class = "danger"
	ClassWarning   Class = "warning"
	ClassInfo      Class = "info"
)

// Badge is a label paired with its display class.
type Badge struct {
	Label string
	Class Class
}
