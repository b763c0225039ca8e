package model

// User is the authenticated GitLab user.
type User struct {
	Username string
}
