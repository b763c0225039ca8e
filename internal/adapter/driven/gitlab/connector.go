package gitlab

import (
	"net/http"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitLabConnector = Connector{}

// Connector builds Clients that share one http.Client.
type Connector struct {
	HTTPClient *http.Client // nil means a default client.
}

// Connect builds a client from a user-supplied server URL.
func (c Connector) Connect(baseURL, token string) (driven.GitLabClient, error) {
	client, err := NewClient(baseURL, token, c.options()...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Restore builds a client from a persisted endpoint.
func (c Connector) Restore(ep model.Endpoint) (driven.GitLabClient, error) {
	client, err := NewClientFromEndpoint(ep, c.options()...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (c Connector) options() []Option {
	if c.HTTPClient == nil {
		return nil
	}
	return []Option{WithHTTPClient(c.HTTPClient)}
}
