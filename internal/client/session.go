package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"storefront/internal/model"
)

// User is the signed-in shopper as returned by login.
type User struct {
	ID      uuid.UUID     `json:"_id"`
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone"`
	Address model.Address `json:"address"`
	Role    model.Role    `json:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == model.RoleAdmin
}

type authState struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Session is the shopper's sign-in state, mirrored to the "auth" storage key.
type Session struct {
	mu      sync.RWMutex
	state   authState
	storage LocalStorage
}

// LoadSession hydrates a session from storage. A missing key yields an empty
// session.
func LoadSession(storage LocalStorage) (*Session, error) {
	s := &Session{storage: storage}
	raw, ok, err := storage.GetItem(AuthKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(raw), &s.state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", AuthKey, err)
	}
	return s, nil
}

// User returns the signed-in user or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// Token returns the sign-in token or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// SignedIn reports whether a token is held.
func (s *Session) SignedIn() bool {
	return s.Token() != ""
}

// Set stores a fresh sign-in and persists it.
func (s *Session) Set(user *User, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := authState{User: user, Token: token}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := s.storage.SetItem(AuthKey, string(data)); err != nil {
		return err
	}
	s.state = state
	return nil
}

// Clear forgets the sign-in.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.RemoveItem(AuthKey); err != nil {
		return err
	}
	s.state = authState{}
	return nil
}

// Authorize puts the session token on req. Requests made without a token
// carry no Authorization header.
func (s *Session) Authorize(req *http.Request) {
	if token := s.Token(); token != "" {
		req.Header.Set("Authorization", token)
	}
}
