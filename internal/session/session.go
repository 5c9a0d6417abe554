// Package session owns the authenticated identity and the bearer token.
// The token is opaque: it is persisted, attached to requests via the api
// client, and never inspected.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	jww "github.com/spf13/jwalterweatherman"

	"github.com/quillchat/quill/internal/api"
	"github.com/quillchat/quill/internal/models"
	"github.com/quillchat/quill/internal/store"
)

const (
	tokenKey    = "auth_token"
	identityKey = "identity"
)

type Store struct {
	client *api.Client
	kv     *store.Store

	mu       sync.RWMutex
	identity models.Identity
	loggedIn bool
}

func NewStore(client *api.Client, kv *store.Store) *Store {
	return &Store{client: client, kv: kv}
}

// Login exchanges credentials for a token, resolves the identity, and
// persists both. Rejected credentials surface as the api.RemoteError from
// the token exchange.
func (s *Store) Login(ctx context.Context, email, password string) error {
	token, err := s.client.ExchangeToken(ctx, email, password)
	if err != nil {
		return err
	}

	s.client.SetToken(token.AccessToken)

	identity, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.client.ClearToken()
		return err
	}

	if err := s.persist(token.AccessToken, identity); err != nil {
		return err
	}

	s.mu.Lock()
	s.identity = identity
	s.loggedIn = true
	s.mu.Unlock()

	jww.INFO.Printf("session: logged in as %s", identity.Email)
	return nil
}

// Register creates the account and then performs Login semantics. A rejected
// payload (duplicate email and the like) surfaces as the api.RemoteError
// from registration.
func (s *Store) Register(ctx context.Context, email, password, name, displayName string) error {
	_, err := s.client.Register(ctx, api.RegisterRequest{
		Email:       email,
		Password:    password,
		Name:        name,
		DisplayName: displayName,
	})
	if err != nil {
		return err
	}

	return s.Login(ctx, email, password)
}

// Restore revives a persisted session on startup. It re-validates the stored
// token against the server; any failure clears the persisted state and
// reports false. An invalid token is an expected condition, not a fault, so
// Restore never returns an error.
func (s *Store) Restore(ctx context.Context) bool {
	tokenData, err := s.kv.Get(tokenKey)
	if err != nil {
		return false
	}

	s.client.SetToken(string(tokenData))

	identity, err := s.client.CurrentUser(ctx)
	if err != nil {
		jww.INFO.Printf("session: stored token rejected, clearing: %v", err)
		s.Logout()
		return false
	}

	s.mu.Lock()
	s.identity = identity
	s.loggedIn = true
	s.mu.Unlock()

	return true
}

// Logout clears the token and identity everywhere, unconditionally. It makes
// no network call and cannot fail.
func (s *Store) Logout() {
	s.client.ClearToken()
	s.kv.Delete(tokenKey)
	s.kv.Delete(identityKey)

	s.mu.Lock()
	s.identity = models.Identity{}
	s.loggedIn = false
	s.mu.Unlock()
}

// UpdateProfile patches the current user's name and display name and
// persists the refreshed identity.
func (s *Store) UpdateProfile(ctx context.Context, name, displayName string) error {
	identity, err := s.client.UpdateCurrentUser(ctx, api.UpdateUserRequest{
		Name:        name,
		DisplayName: displayName,
	})
	if err != nil {
		return err
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}
	if err := s.kv.Set(identityKey, data); err != nil {
		return err
	}

	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()

	return nil
}

// Current returns the authenticated identity, if any.
func (s *Store) Current() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.loggedIn
}

func (s *Store) Authenticated() bool {
	_, ok := s.Current()
	return ok
}

func (s *Store) persist(token string, identity models.Identity) error {
	if err := s.kv.Set(tokenKey, []byte(token)); err != nil {
		return err
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}
	return s.kv.Set(identityKey, data)
}
