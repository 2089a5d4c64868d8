package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestTracker(timeout time.Duration) (*Tracker, *clock) {
	c := &clock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	tr := NewTracker(func() time.Duration { return timeout })
	tr.now = c.now

	return tr, c
}

func TestTracker_Inactivity(t *testing.T) {
	tr, c := newTestTracker(10 * time.Minute)
	exp := c.t.Add(24 * time.Hour)

	require.NoError(t, tr.Touch("token-a", exp))

	c.t = c.t.Add(9 * time.Minute)
	require.NoError(t, tr.Touch("token-a", exp))

	c.t = c.t.Add(11 * time.Minute)
	assert.ErrorIs(t, tr.Touch("token-a", exp), ErrInactive)
	assert.ErrorIs(t, tr.Touch("token-a", exp), ErrRevoked)

	require.NoError(t, tr.Touch("token-b", exp))
}

func TestTracker_Revoke(t *testing.T) {
	tr, c := newTestTracker(10 * time.Minute)
	exp := c.t.Add(time.Hour)

	require.NoError(t, tr.Touch("token-a", exp))
	tr.Revoke("token-a", exp)

	assert.ErrorIs(t, tr.Touch("token-a", exp), ErrRevoked)
}

func TestTracker_Purge(t *testing.T) {
	tr, c := newTestTracker(0)

	require.NoError(t, tr.Touch("short", c.t.Add(time.Minute)))
	require.NoError(t, tr.Touch("long", c.t.Add(time.Hour)))

	c.t = c.t.Add(2 * time.Minute)
	assert.Equal(t, 1, tr.Purge())
	assert.Len(t, tr.entries, 1)
	assert.NotContains(t, tr.entries, "short")
	assert.Contains(t, tr.entries, digest("long"))
}

func TestTracker_TrackStartsIdleWindowAtIssue(t *testing.T) {
	tr, c := newTestTracker(10 * time.Minute)
	exp := c.t.Add(24 * time.Hour)

	tr.Track("issued", exp)
	c.t = c.t.Add(11 * time.Minute)
	assert.ErrorIs(t, tr.Touch("issued", exp), ErrInactive)

	tr.Revoke("closed", exp)
	tr.Track("closed", exp)
	assert.ErrorIs(t, tr.Touch("closed", exp), ErrRevoked)

	tr.Track("fresh", exp)
	c.t = c.t.Add(5 * time.Minute)
	require.NoError(t, tr.Touch("fresh", exp))
}
