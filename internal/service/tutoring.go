package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository"
)

var (
	ErrSessionNotFound     = repository.ErrSessionNotFound
	ErrBlockNotAvailable   = repository.ErrBlockNotAvailable
	ErrScheduleConflict    = repository.ErrScheduleConflict
	ErrSessionStateChanged = repository.ErrSessionStateChanged
	ErrOwnBlock            = errors.New("a tutor cannot book their own availability")
	ErrTutorNotForSubject  = errors.New("the tutor does not teach this subject")
	ErrBlockInPast         = errors.New("the block has already started")
	ErrTopicRequired       = errors.New("the session topic is required")
	ErrLinkRequired        = errors.New("the session link is required")
	ErrReasonRequired      = errors.New("a cancellation reason is required")
	ErrAlreadyConfirmed    = errors.New("the session was already confirmed")
)

type TutoringRepository interface {
	Reserve(ctx context.Context, session domain.TutoringSession) (domain.TutoringSession, error)
	FindByID(ctx context.Context, id uint) (domain.TutoringSession, error)
	FindByStudent(ctx context.Context, studentID uint, statuses []domain.SessionStatus) ([]domain.TutoringSession, error)
	FindByTutor(ctx context.Context, tutorID uint, statuses []domain.SessionStatus) ([]domain.TutoringSession, error)
	FindByStatusUntil(ctx context.Context, status domain.SessionStatus, day domain.Date) ([]domain.TutoringSession, error)
	SetLink(ctx context.Context, id uint, link string) (domain.TutoringSession, error)
	Transition(ctx context.Context, id uint, from []domain.SessionStatus, to domain.SessionStatus, blockStatus domain.BlockStatus) (domain.TutoringSession, error)
	Cancel(ctx context.Context, id, userID uint, reason string, from []domain.SessionStatus) (domain.TutoringSession, error)
	Confirm(ctx context.Context, id uint, asStudent bool, at time.Time, from []domain.SessionStatus) (domain.TutoringSession, error)
}

type BlockFinder interface {
	FindBlockByID(ctx context.Context, id uint) (domain.MonthlyBlock, error)
}

type TutorChecker interface {
	IsTutorOf(ctx context.Context, tutorID, subjectID uint) (bool, error)
}

// Notifier receives every session state change.
type Notifier interface {
	Publish(event domain.SessionEvent)
}

type noopNotifier struct{}

func (noopNotifier) Publish(domain.SessionEvent) {}

type TutoringService struct {
	repo      TutoringRepository
	blocks    BlockFinder
	tutors    TutorChecker
	notifier  Notifier
	loc       *time.Location
	graceDays int
	now       func() time.Time
}

func NewTutoringService(
	repo TutoringRepository,
	blocks BlockFinder,
	tutors TutorChecker,
	notifier Notifier,
	loc *time.Location,
	confirmationBusinessDays int,
) *TutoringService {
	if notifier == nil {
		notifier = noopNotifier{}
	}

	return &TutoringService{
		repo:      repo,
		blocks:    blocks,
		tutors:    tutors,
		notifier:  notifier,
		loc:       loc,
		graceDays: confirmationBusinessDays,
		now:       time.Now,
	}
}

func (s *TutoringService) publish(eventType string, session domain.TutoringSession) {
	s.notifier.Publish(domain.SessionEvent{
		Type:      eventType,
		SessionID: session.ID,
		Status:    session.Status,
		StudentID: session.StudentID,
		TutorID:   session.TutorID,
	})
}

func (s *TutoringService) Reserve(ctx context.Context, studentID, blockID, subjectID uint, topic string) (domain.TutoringSession, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return domain.TutoringSession{}, ErrTopicRequired
	}

	block, err := s.blocks.FindBlockByID(ctx, blockID)
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("s.blocks.FindBlockByID -> %w", err)
	}
	if block.TutorID == studentID {
		return domain.TutoringSession{}, ErrOwnBlock
	}
	if block.Status != domain.BlockAvailable {
		return domain.TutoringSession{}, ErrBlockNotAvailable
	}
	if !block.Date.In(block.Start, s.loc).After(s.now()) {
		return domain.TutoringSession{}, ErrBlockInPast
	}

	teaches, err := s.tutors.IsTutorOf(ctx, block.TutorID, subjectID)
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("s.tutors.IsTutorOf -> %w", err)
	}
	if !teaches {
		return domain.TutoringSession{}, ErrTutorNotForSubject
	}

	reserved, err := s.repo.Reserve(ctx, domain.TutoringSession{
		StudentID:   studentID,
		SubjectID:   subjectID,
		BlockID:     blockID,
		Topic:       topic,
		RequestedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("s.repo.Reserve -> %w", err)
	}
	s.publish("session.reserved", reserved)

	return reserved, nil
}

func (s *TutoringService) ForStudent(ctx context.Context, studentID uint, statuses []domain.SessionStatus) ([]domain.TutoringSession, error) {
	sessions, err := s.repo.FindByStudent(ctx, studentID, statuses)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByStudent -> %w", err)
	}

	return sessions, nil
}

func (s *TutoringService) ForTutor(ctx context.Context, tutorID uint, statuses []domain.SessionStatus) ([]domain.TutoringSession, error) {
	sessions, err := s.repo.FindByTutor(ctx, tutorID, statuses)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByTutor -> %w", err)
	}

	return sessions, nil
}

func (s *TutoringService) SetLink(ctx context.Context, tutorID, id uint, link string) (domain.TutoringSession, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return domain.TutoringSession{}, ErrLinkRequired
	}

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if session.TutorID != tutorID {
		return domain.TutoringSession{}, ErrPermissionDenied
	}
	if session.Status != domain.SessionReserved {
		return domain.TutoringSession{}, ErrInvalidTransition
	}

	updated, err := s.repo.SetLink(ctx, id, link)
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("s.repo.SetLink -> %w", err)
	}
	s.publish("session.scheduled", updated)

	return updated, nil
}

func (s *TutoringService) Cancel(ctx context.Context, userID, id uint, reason string) (domain.TutoringSession, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.TutoringSession{}, ErrReasonRequired
	}

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !session.IsParty(userID) {
		return domain.TutoringSession{}, ErrPermissionDenied
	}
	if !session.Status.Cancellable() {
		return domain.TutoringSession{}, ErrInvalidTransition
	}

	cancelled, err := s.repo.Cancel(ctx, id, userID, reason,
		[]domain.SessionStatus{domain.SessionReserved, domain.SessionScheduled})
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("s.repo.Cancel -> %w", err)
	}
	s.publish("session.cancelled", cancelled)

	return cancelled, nil
}

// Confirm records that one party says the session took place. The session is
// REALIZADA once both parties confirmed.
func (s *TutoringService) Confirm(ctx context.Context, userID, id uint, asStudent bool) (domain.TutoringSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	party, confirmed := session.TutorID, session.TutorConfirmed
	if asStudent {
		party, confirmed = session.StudentID, session.StudentConfirmed
	}
	if party != userID {
		return domain.TutoringSession{}, ErrPermissionDenied
	}
	if !session.Status.Confirmable() {
		return domain.TutoringSession{}, ErrInvalidTransition
	}
	if confirmed {
		return domain.TutoringSession{}, ErrAlreadyConfirmed
	}

	updated, err := s.repo.Confirm(ctx, id, asStudent, s.now().UTC(),
		[]domain.SessionStatus{domain.SessionScheduled, domain.SessionPendingConfirmation})
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("s.repo.Confirm -> %w", err)
	}
	s.publish("session.confirmed", updated)

	return updated, nil
}

func (s *TutoringService) PendingReview(ctx context.Context) ([]domain.TutoringSession, error) {
	sessions, err := s.repo.FindByStatusUntil(ctx, domain.SessionUnconfirmed, domain.DateOf(s.now().In(s.loc)))
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByStatusUntil -> %w", err)
	}

	return sessions, nil
}

// Review closes a session nobody confirmed in time.
func (s *TutoringService) Review(ctx context.Context, id uint, held bool) (domain.TutoringSession, error) {
	to, block := domain.SessionNotHeld, domain.BlockCancelled
	if held {
		to, block = domain.SessionCompleted, domain.BlockOccupied
	}

	reviewed, err := s.repo.Transition(ctx, id, []domain.SessionStatus{domain.SessionUnconfirmed}, to, block)
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("s.repo.Transition -> %w", err)
	}
	s.publish("session.reviewed", reviewed)

	return reviewed, nil
}

// Sweep advances sessions whose time has passed. PROGRAMADA sessions that ended
// wait for confirmation, and sessions left unconfirmed past the grace period are
// flagged for review. It returns how many sessions moved.
func (s *TutoringService) Sweep(ctx context.Context) (int, error) {
	now := s.now().In(s.loc)
	today := domain.DateOf(now)
	moved := 0

	ended, err := s.repo.FindByStatusUntil(ctx, domain.SessionScheduled, today)
	if err != nil {
		return moved, fmt.Errorf("s.repo.FindByStatusUntil -> %w", err)
	}
	for _, session := range ended {
		if session.Date.In(session.End, s.loc).After(now) {
			continue
		}
		ok, err := s.advance(ctx, session.ID, domain.SessionScheduled, domain.SessionPendingConfirmation)
		if err != nil {
			return moved, err
		}
		if ok {
			moved++
		}
	}

	waiting, err := s.repo.FindByStatusUntil(ctx, domain.SessionPendingConfirmation, today)
	if err != nil {
		return moved, fmt.Errorf("s.repo.FindByStatusUntil -> %w", err)
	}
	for _, session := range waiting {
		if !today.After(domain.AddBusinessDays(session.Date, s.graceDays)) {
			continue
		}
		ok, err := s.advance(ctx, session.ID, domain.SessionPendingConfirmation, domain.SessionUnconfirmed)
		if err != nil {
			return moved, err
		}
		if ok {
			moved++
		}
	}

	return moved, nil
}

func (s *TutoringService) advance(ctx context.Context, id uint, from, to domain.SessionStatus) (bool, error) {
	updated, err := s.repo.Transition(ctx, id, []domain.SessionStatus{from}, to, "")
	if err != nil {
		if errors.Is(err, repository.ErrSessionStateChanged) {
			// A party acted on it between the query and the update.
			zap.L().Debug("session changed during sweep", zap.Uint("session_id", id))
			return false, nil
		}
		return false, fmt.Errorf("s.repo.Transition -> %w", err)
	}
	s.publish("session.status", updated)

	return true, nil
}
