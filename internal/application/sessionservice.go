package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/port/driven"
)

// SessionInfo describes the current connection.
type SessionInfo struct {
	Connected bool
	Host      string
	Username  string
}

// SessionService manages login, logout and restoring the GitLab connection at
// startup. The connected endpoint is persisted through the SessionStore.
type SessionService struct {
	connector driven.GitLabConnector
	store     driven.SessionStore
	provider  *GitLabClientProvider
}

// NewSessionService creates a SessionService.
func NewSessionService(connector driven.GitLabConnector, store driven.SessionStore, provider *GitLabClientProvider) *SessionService {
	return &SessionService{
		connector: connector,
		store:     store,
		provider:  provider,
	}
}

// TestCredentials builds a client for baseURL and token and returns the user
// the token belongs to. Nothing is installed or persisted.
func (s *SessionService) TestCredentials(ctx context.Context, baseURL, token string) (model.User, error) {
	_, user, err := s.verify(ctx, baseURL, token)
	return user, err
}

func (s *SessionService) verify(ctx context.Context, baseURL, token string) (driven.GitLabClient, model.User, error) {
	client, err := s.connector.Connect(baseURL, token)
	if err != nil {
		return nil, model.User{}, err
	}
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, model.User{}, err
	}
	return client, user, nil
}

// Connect verifies the credentials, installs the client and persists its
// endpoint. A persistence failure is logged and does not fail the login.
func (s *SessionService) Connect(ctx context.Context, baseURL, token string) (SessionInfo, error) {
	client, user, err := s.verify(ctx, baseURL, token)
	if err != nil {
		return SessionInfo{}, err
	}

	s.provider.Replace(client, user.Username)

	if s.store != nil {
		if err := s.store.Save(ctx, client.Endpoint()); err != nil {
			slog.Warn("session not persisted", "error", err)
		}
	}

	info := s.Current()
	slog.Info("connected to GitLab", "host", info.Host, "username", info.Username)
	return info, nil
}

// Restore installs the persisted endpoint. When nothing is persisted and
// fallbackURL is set, the fallback credentials are used instead. Returns
// (false, nil) when there is nothing to restore.
func (s *SessionService) Restore(ctx context.Context, fallbackURL, fallbackToken string) (bool, error) {
	var ep *model.Endpoint
	if s.store != nil {
		loaded, err := s.store.Load(ctx)
		switch {
		case errors.Is(err, driven.ErrEncryptionKeyNotSet):
			slog.Warn("persisted session unavailable", "error", err)
		case err != nil:
			return false, fmt.Errorf("load session: %w", err)
		default:
			ep = loaded
		}
	}

	if ep != nil {
		client, err := s.connector.Restore(*ep)
		if err != nil {
			return false, fmt.Errorf("restore session: %w", err)
		}
		user, err := client.CurrentUser(ctx)
		if err != nil {
			return false, fmt.Errorf("restore session: %w", err)
		}
		s.provider.Replace(client, user.Username)
		slog.Info("session restored", "host", s.provider.Host(), "username", user.Username)
		return true, nil
	}

	if fallbackURL == "" || fallbackToken == "" {
		return false, nil
	}
	if _, err := s.Connect(ctx, fallbackURL, fallbackToken); err != nil {
		return false, fmt.Errorf("connect with configured credentials: %w", err)
	}
	return true, nil
}

// Logout drops the current client and clears the persisted endpoint.
func (s *SessionService) Logout(ctx context.Context) error {
	s.provider.Replace(nil, "")
	if s.store == nil {
		return nil
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	slog.Info("logged out")
	return nil
}

// Current reports the current connection.
func (s *SessionService) Current() SessionInfo {
	if !s.provider.HasClient() {
		return SessionInfo{}
	}
	return SessionInfo{
		Connected: true,
		Host:      s.provider.Host(),
		Username:  s.provider.Username(),
	}
}
