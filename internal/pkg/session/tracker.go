package session

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

var (
	ErrRevoked  = errors.New("session closed")
	ErrInactive = errors.New("session closed for inactivity")
)

type entry struct {
	lastSeen  time.Time
	expiresAt time.Time
	revoked   bool
}

// Tracker remembers when each token was last used and which tokens were
// revoked. Tokens are indexed by digest, never stored in clear.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*entry
	timeout func() time.Duration
	now     func() time.Time
}

// NewTracker takes the idle timeout as a function so it can follow config reloads.
func NewTracker(timeout func() time.Duration) *Tracker {
	return &Tracker{
		entries: make(map[string]*entry),
		timeout: timeout,
		now:     time.Now,
	}
}

func digest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Track registers a freshly issued token so its idle window starts at issue
// time rather than at first use.
func (t *Tracker) Track(token string, expiresAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := digest(token)
	if _, ok := t.entries[key]; ok {
		return
	}
	t.entries[key] = &entry{lastSeen: t.now(), expiresAt: expiresAt}
}

// Touch records a use of token. Tokens that were never tracked, such as those
// issued before a restart, are registered on first use. A token idle for longer than the timeout is
// revoked on the spot.
func (t *Tracker) Touch(token string, expiresAt time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	key := digest(token)
	e, ok := t.entries[key]
	if !ok {
		t.entries[key] = &entry{lastSeen: now, expiresAt: expiresAt}
		return nil
	}
	if e.revoked {
		return ErrRevoked
	}
	if timeout := t.timeout(); timeout > 0 && now.Sub(e.lastSeen) > timeout {
		e.revoked = true
		return ErrInactive
	}
	e.lastSeen = now

	return nil
}

func (t *Tracker) Revoke(token string, expiresAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[digest(token)] = &entry{lastSeen: t.now(), expiresAt: expiresAt, revoked: true}
}

// Purge forgets tokens that expired on their own.
func (t *Tracker) Purge() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	purged := 0
	for key, e := range t.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(t.entries, key)
			purged++
		}
	}

	return purged
}

func (t *Tracker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.Purge()
		}
	}
}
