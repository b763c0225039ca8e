package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by SessionStore operations when
// GLBT_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set GLBT_SECRET_KEY")

// SessionStore persists the endpoint of the connected GitLab client across
// restarts. The adapter is responsible for encryption.
type SessionStore interface {
	// Save stores or replaces the persisted endpoint.
	Save(ctx context.Context, ep model.Endpoint) error
	// Load returns the persisted endpoint, or (nil, nil) when none exists.
	Load(ctx context.Context) (*model.Endpoint, error)
	// Clear removes the persisted endpoint.
	Clear(ctx context.Context) error
}
