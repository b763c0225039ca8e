package model

// Endpoint is the value form of a configured GitLab connection: the API root
// URL (ending in "api/v4/") and the bearer token. Two endpoints with the same
// URL and token are interchangeable. The short JSON names match the persisted
// format.
type Endpoint struct {
	URL   string `json:"u"`
	Token string `json:"t"`
}
