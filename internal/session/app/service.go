package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/econext/storefront/internal/session/domain"
)

// Storage keys. All three are written together by Establish and
// deleted together by Clear; Hydrate still tolerates partial
// presence defensively.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
)

// Store is the single source of truth for the authenticated
// identity and the only reader/writer of persisted credentials.
type Store struct {
	creds CredentialStore

	mu      sync.Mutex
	current domain.Session
}

func NewStore(creds CredentialStore) *Store {
	return &Store{creds: creds}
}

// Hydrate rebuilds the session from persisted storage. Missing or
// malformed data yields an unauthenticated session, never an error:
// failing open to logged-out is safe, failing open to a phantom
// identity is not.
func (s *Store) Hydrate(ctx context.Context) domain.Session {
	access, err := s.creds.Get(ctx, keyAccessToken)
	if err != nil || access == "" {
		return s.setCurrent(domain.Session{})
	}

	rawUser, err := s.creds.Get(ctx, keyUser)
	if err != nil || rawUser == "" {
		return s.setCurrent(domain.Session{})
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return s.setCurrent(domain.Session{})
	}

	refresh, err := s.creds.Get(ctx, keyRefreshToken)
	if err != nil {
		refresh = ""
	}

	return s.setCurrent(domain.Session{
		User:         &user,
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// Establish persists the credentials from a successful login or
// signup, overwriting any prior session unconditionally. On a
// persistence failure the in-memory session is left unchanged.
func (s *Store) Establish(ctx context.Context, res domain.AuthResult) (domain.Session, error) {
	rawUser, err := json.Marshal(res.User)
	if err != nil {
		return s.Current(), fmt.Errorf("encode user record: %w", err)
	}

	if err := s.creds.Set(ctx, keyAccessToken, res.Tokens.Access); err != nil {
		return s.Current(), fmt.Errorf("persist access token: %w", err)
	}
	if err := s.creds.Set(ctx, keyRefreshToken, res.Tokens.Refresh); err != nil {
		return s.Current(), fmt.Errorf("persist refresh token: %w", err)
	}
	if err := s.creds.Set(ctx, keyUser, string(rawUser)); err != nil {
		return s.Current(), fmt.Errorf("persist user record: %w", err)
	}

	user := res.User
	return s.setCurrent(domain.Session{
		User:         &user,
		AccessToken:  res.Tokens.Access,
		RefreshToken: res.Tokens.Refresh,
	}), nil
}

// UpdateUser replaces the stored user record after a profile change,
// keeping the tokens as they are. Requires an authenticated session;
// on a persistence failure the in-memory session is left unchanged.
func (s *Store) UpdateUser(ctx context.Context, user domain.User) (domain.Session, error) {
	sess := s.Current()
	if !sess.Authenticated() {
		return sess, fmt.Errorf("update user: no authenticated session")
	}

	rawUser, err := json.Marshal(user)
	if err != nil {
		return sess, fmt.Errorf("encode user record: %w", err)
	}
	if err := s.creds.Set(ctx, keyUser, string(rawUser)); err != nil {
		return sess, fmt.Errorf("persist user record: %w", err)
	}

	sess.User = &user
	return s.setCurrent(sess), nil
}

// Clear erases all persisted credentials and returns an empty
// session. Clearing an already-empty session is a no-op.
func (s *Store) Clear(ctx context.Context) (domain.Session, error) {
	for _, key := range []string{keyAccessToken, keyRefreshToken, keyUser} {
		if err := s.creds.Delete(ctx, key); err != nil {
			return s.Current(), fmt.Errorf("erase %s: %w", key, err)
		}
	}
	return s.setCurrent(domain.Session{}), nil
}

// Current returns the in-memory snapshot without touching storage.
func (s *Store) Current() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// AccessToken is a convenience for the commerce client's bearer
// token injection.
func (s *Store) AccessToken() string {
	return s.Current().AccessToken
}

func (s *Store) setCurrent(sess domain.Session) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sess
	return sess
}
