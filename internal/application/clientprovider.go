package application

import (
	"net/url"
	"sync"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/port/driven"
)

// GitLabClientProvider enables runtime hot-swap of the GitLab client. Login
// and logout replace the held client; every fetch and action reads the current
// one at the moment it starts.
type GitLabClientProvider struct {
	mu       sync.RWMutex
	client   driven.GitLabClient
	username string
}

// NewGitLabClientProvider creates a provider with the given initial client.
// client may be nil when no credentials are available at startup.
func NewGitLabClientProvider(client driven.GitLabClient, username string) *GitLabClientProvider {
	return &GitLabClientProvider{
		client:   client,
		username: username,
	}
}

// Get returns the current GitLab client, or nil when not connected.
func (p *GitLabClientProvider) Get() driven.GitLabClient {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client
}

// Username returns the username associated with the current client.
func (p *GitLabClientProvider) Username() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.username
}

// Host returns the host name of the current client, or "" when not connected.
func (p *GitLabClientProvider) Host() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.client == nil {
		return ""
	}
	u, err := url.Parse(p.client.Endpoint().URL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Replace swaps the current client and username.
func (p *GitLabClientProvider) Replace(client driven.GitLabClient, username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client = client
	p.username = username
}

// HasClient returns true if a non-nil client is currently held.
func (p *GitLabClientProvider) HasClient() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client != nil
}
