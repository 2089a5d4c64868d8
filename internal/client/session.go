package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/pkg/jwthelper"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidPhone     = errors.New("phone number must have exactly 10 digits")
)

// Session is the signed-in state of one user: token, profile and active role.
type Session struct {
	c     *Client
	store Store

	mu    sync.RWMutex
	user  *domain.User
	token string

	unsubscribe func()
}

// NewSession binds a session to c. Any 401 seen by c clears it.
func NewSession(c *Client, store Store) *Session {
	if store == nil {
		store = NewMemoryStore()
	}

	s := &Session{c: c, store: store}
	s.unsubscribe = c.OnSessionExpired(func() {
		_ = s.clear(context.Background())
	})

	return s
}

func (s *Session) Close() {
	s.unsubscribe()
}

func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token != "" && s.user != nil
}

// ActiveRole reads the activeRole claim without checking the signature.
func (s *Session) ActiveRole() string {
	token := s.Token()
	if token == "" {
		return ""
	}

	claims, err := jwthelper.ParseUnverified(token)
	if err != nil {
		return ""
	}

	return claims.ActiveRole
}

func (s *Session) NeedsPhoneNumber() bool {
	user, ok := s.User()
	if !ok {
		return false
	}

	return len(strings.TrimSpace(user.Phone)) < 10
}

// Restore picks up a saved token and refreshes the user from the server.
func (s *Session) Restore(ctx context.Context) error {
	token, ok, err := s.store.Get(ctx, storeKeyToken)
	if err != nil {
		return fmt.Errorf("s.store.Get -> %w", err)
	}
	if !ok || token == "" {
		return nil
	}

	if raw, found, err := s.store.Get(ctx, storeKeyUser); err == nil && found {
		var cached domain.User
		if json.Unmarshal([]byte(raw), &cached) == nil {
			s.mu.Lock()
			s.user = &cached
			s.mu.Unlock()
		}
	}

	s.setToken(token)

	return s.Reload(ctx)
}

func (s *Session) HandleLoginCallback(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	if err := s.store.Set(ctx, storeKeyToken, token); err != nil {
		return fmt.Errorf("s.store.Set -> %w", err)
	}
	s.setToken(token)

	return s.Reload(ctx)
}

// Reload fetches the current user. A failure other than 401 keeps the cached user.
func (s *Session) Reload(ctx context.Context) error {
	if s.Token() == "" {
		return ErrNotAuthenticated
	}

	me, err := s.c.Auth.Me(ctx)
	if err != nil {
		return fmt.Errorf("s.c.Auth.Me -> %w", err)
	}

	return s.setUser(ctx, me.User)
}

func (s *Session) SwitchRole(ctx context.Context, role string) error {
	if s.Token() == "" {
		return ErrNotAuthenticated
	}

	token, err := s.c.Auth.SwitchRole(ctx, role)
	if err != nil {
		return fmt.Errorf("s.c.Auth.SwitchRole -> %w", err)
	}
	if err = s.store.Set(ctx, storeKeyToken, token); err != nil {
		return fmt.Errorf("s.store.Set -> %w", err)
	}
	s.setToken(token)

	return s.Reload(ctx)
}

func (s *Session) UpdatePhoneNumber(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if !isTenDigits(phone) {
		return ErrInvalidPhone
	}

	user, ok := s.User()
	if !ok {
		return ErrNotAuthenticated
	}

	updated, err := s.c.Auth.UpdatePhone(ctx, user.ID, phone)
	if err != nil {
		return fmt.Errorf("s.c.Auth.UpdatePhone -> %w", err)
	}

	return s.setUser(ctx, updated)
}

// Logout tells the server when it can and always forgets the local session.
func (s *Session) Logout(ctx context.Context) error {
	if s.Token() != "" {
		_ = s.c.Auth.Logout(ctx)
	}

	return s.clear(ctx)
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.c.SetToken(token)
}

func (s *Session) setUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}
	if err = s.store.Set(ctx, storeKeyUser, string(raw)); err != nil {
		return fmt.Errorf("s.store.Set -> %w", err)
	}

	return nil
}

func (s *Session) clear(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	s.c.SetToken("")

	return s.store.Delete(ctx, storeKeyToken, storeKeyUser)
}

func isTenDigits(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
