package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingetuto/ingetuto-api/internal/domain"
)

const (
	testStudent uint = 1
	testTutor   uint = 2
	testSubject uint = 10
)

type tutoringFixture struct {
	svc      *TutoringService
	repo     *fakeTutoringRepo
	blocks   *fakeAvailabilityRepo
	notifier *fakeNotifier
}

func newTutoringFixture(now time.Time) *tutoringFixture {
	blocks := newFakeAvailabilityRepo()
	blocks.blocks[1] = domain.MonthlyBlock{
		ID:       1,
		TutorID:  testTutor,
		Date:     domain.NewDate(2025, 3, 10),
		Start:    domain.NewClock(8, 0),
		End:      domain.NewClock(9, 0),
		Modality: domain.ModalityVirtual,
		Status:   domain.BlockAvailable,
	}
	subjects := newFakeSubjectRepo()
	subjects.link(1, testTutor, testSubject)

	repo := newFakeTutoringRepo(blocks)
	notifier := &fakeNotifier{}
	svc := NewTutoringService(repo, blocks, subjects, notifier, time.UTC, 3)
	svc.now = fixedNow(now)

	return &tutoringFixture{svc: svc, repo: repo, blocks: blocks, notifier: notifier}
}

func TestTutoringService_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("books an available block", func(t *testing.T) {
		f := newTutoringFixture(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

		session, err := f.svc.Reserve(ctx, testStudent, 1, testSubject, " Integrales ")
		require.NoError(t, err)

		assert.Equal(t, domain.SessionReserved, session.Status)
		assert.Equal(t, testTutor, session.TutorID)
		assert.Equal(t, "Integrales", session.Topic)
		assert.Equal(t, domain.BlockReserved, f.blocks.blocks[1].Status)
		require.Len(t, f.notifier.events, 1)
		assert.Equal(t, session.ID, f.notifier.events[0].SessionID)

		_, err = f.svc.Reserve(ctx, 3, 1, testSubject, "Otra")
		assert.ErrorIs(t, err, ErrBlockNotAvailable)
	})

	t.Run("rejects own block", func(t *testing.T) {
		f := newTutoringFixture(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

		_, err := f.svc.Reserve(ctx, testTutor, 1, testSubject, "Tema")
		assert.ErrorIs(t, err, ErrOwnBlock)
	})

	t.Run("rejects a subject the tutor does not teach", func(t *testing.T) {
		f := newTutoringFixture(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

		_, err := f.svc.Reserve(ctx, testStudent, 1, 99, "Tema")
		assert.ErrorIs(t, err, ErrTutorNotForSubject)
	})

	t.Run("rejects a block that already started", func(t *testing.T) {
		f := newTutoringFixture(time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC))

		_, err := f.svc.Reserve(ctx, testStudent, 1, testSubject, "Tema")
		assert.ErrorIs(t, err, ErrBlockInPast)
	})

	t.Run("requires a topic", func(t *testing.T) {
		f := newTutoringFixture(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

		_, err := f.svc.Reserve(ctx, testStudent, 1, testSubject, "  ")
		assert.ErrorIs(t, err, ErrTopicRequired)
	})
}

func TestTutoringService_ScheduleAndConfirm(t *testing.T) {
	ctx := context.Background()
	f := newTutoringFixture(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	session, err := f.svc.Reserve(ctx, testStudent, 1, testSubject, "Derivadas")
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, testStudent, session.ID, true)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.SetLink(ctx, testStudent, session.ID, "https://meet.example/abc")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	scheduled, err := f.svc.SetLink(ctx, testTutor, session.ID, "https://meet.example/abc")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionScheduled, scheduled.Status)
	assert.Equal(t, "https://meet.example/abc", scheduled.Link)

	_, err = f.svc.Confirm(ctx, testStudent, session.ID, false)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	confirmed, err := f.svc.Confirm(ctx, testStudent, session.ID, true)
	require.NoError(t, err)
	assert.True(t, confirmed.StudentConfirmed)
	assert.Equal(t, domain.SessionScheduled, confirmed.Status)

	_, err = f.svc.Confirm(ctx, testStudent, session.ID, true)
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)

	held, err := f.svc.Confirm(ctx, testTutor, session.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionHeld, held.Status)
	assert.Equal(t, domain.BlockOccupied, f.blocks.blocks[1].Status)
}

func TestTutoringService_Cancel(t *testing.T) {
	ctx := context.Background()
	f := newTutoringFixture(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	session, err := f.svc.Reserve(ctx, testStudent, 1, testSubject, "Límites")
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, 77, session.ID, "no puedo")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.svc.Cancel(ctx, testStudent, session.ID, "")
	assert.ErrorIs(t, err, ErrReasonRequired)

	cancelled, err := f.svc.Cancel(ctx, testTutor, session.ID, "Incapacidad médica")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCancelled, cancelled.Status)
	assert.Equal(t, "Incapacidad médica", cancelled.Observations)
	assert.Equal(t, domain.BlockAvailable, f.blocks.blocks[1].Status)

	_, err = f.svc.Cancel(ctx, testStudent, session.ID, "otra vez")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	again, err := f.svc.Reserve(ctx, testStudent, 1, testSubject, "Límites")
	require.NoError(t, err)
	assert.NotEqual(t, session.ID, again.ID)
}

func TestTutoringService_Sweep(t *testing.T) {
	ctx := context.Background()
	f := newTutoringFixture(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))

	f.repo.sessions[1] = domain.TutoringSession{
		ID: 1, StudentID: testStudent, TutorID: testTutor,
		Date: domain.NewDate(2025, 3, 10), Start: domain.NewClock(8, 0), End: domain.NewClock(9, 0),
		Status: domain.SessionScheduled,
	}
	f.repo.sessions[2] = domain.TutoringSession{
		ID: 2, StudentID: testStudent, TutorID: testTutor,
		Date: domain.NewDate(2025, 3, 10), Start: domain.NewClock(14, 0), End: domain.NewClock(15, 0),
		Status: domain.SessionScheduled,
	}
	f.repo.sessions[3] = domain.TutoringSession{
		ID: 3, StudentID: testStudent, TutorID: testTutor,
		Date: domain.NewDate(2025, 3, 5), Start: domain.NewClock(8, 0), End: domain.NewClock(9, 0),
		Status: domain.SessionPendingConfirmation,
	}

	moved, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	assert.Equal(t, domain.SessionPendingConfirmation, f.repo.sessions[1].Status)
	assert.Equal(t, domain.SessionScheduled, f.repo.sessions[2].Status)
	assert.Equal(t, domain.SessionPendingConfirmation, f.repo.sessions[3].Status)

	f.svc.now = fixedNow(time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC))
	moved, err = f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.Equal(t, domain.SessionPendingConfirmation, f.repo.sessions[1].Status)
	assert.Equal(t, domain.SessionPendingConfirmation, f.repo.sessions[2].Status)
	assert.Equal(t, domain.SessionUnconfirmed, f.repo.sessions[3].Status)

	pending, err := f.svc.PendingReview(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint(3), pending[0].ID)

	reviewed, err := f.svc.Review(ctx, 3, true)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, reviewed.Status)

	_, err = f.svc.Review(ctx, 3, false)
	assert.ErrorIs(t, err, ErrSessionStateChanged)
}

type countingSweeper struct {
	calls chan struct{}
}

func (s *countingSweeper) Sweep(context.Context) (int, error) {
	s.calls <- struct{}{}
	return 0, nil
}

func TestSessionSweeper_Run(t *testing.T) {
	sweeper := &countingSweeper{calls: make(chan struct{}, 10)}
	w := NewSessionSweeper(sweeper, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-sweeper.calls:
		case <-time.After(time.Second):
			t.Fatal("sweeper did not run")
		}
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
