package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository/dao"
)

var (
	ErrSessionNotFound     = dao.ErrSessionNotFound
	ErrBlockNotAvailable   = dao.ErrBlockNotAvailable
	ErrScheduleConflict    = dao.ErrScheduleConflict
	ErrSessionStateChanged = dao.ErrSessionStateChanged
)

type TutoringDAO interface {
	Reserve(ctx context.Context, session dao.Session, reservedStatus string) (dao.Session, error)
	FindByID(ctx context.Context, id uint) (dao.Session, error)
	FindByStudent(ctx context.Context, studentID uint, statuses []string) ([]dao.Session, error)
	FindByTutor(ctx context.Context, tutorID uint, statuses []string) ([]dao.Session, error)
	FindByStatusUntil(ctx context.Context, status string, day time.Time) ([]dao.Session, error)
	Transition(ctx context.Context, id uint, fromStatuses []string, toStatus string, extra map[string]any, blockStatus string) (dao.Session, error)
	Cancel(ctx context.Context, id, userID uint, reason string, fromStatuses []string) (dao.Session, error)
	Confirm(ctx context.Context, id uint, asStudent bool, at time.Time, fromStatuses []string, heldStatus string) (dao.Session, error)
}

type TutoringRepository struct {
	dao TutoringDAO
}

func NewTutoringRepository(dao TutoringDAO) *TutoringRepository {
	return &TutoringRepository{
		dao: dao,
	}
}

// Reserve books the block. Date, times, tutor and modality are copied from the block.
func (r *TutoringRepository) Reserve(ctx context.Context, session domain.TutoringSession) (domain.TutoringSession, error) {
	created, err := r.dao.Reserve(ctx, dao.Session{
		StudentID:   session.StudentID,
		SubjectID:   session.SubjectID,
		BlockID:     session.BlockID,
		Topic:       session.Topic,
		RequestedAt: session.RequestedAt,
	}, string(domain.SessionReserved))
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("r.dao.Reserve -> %w", err)
	}

	return sessionDaoToDomain(created), nil
}

func (r *TutoringRepository) FindByID(ctx context.Context, id uint) (domain.TutoringSession, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return sessionDaoToDomain(found), nil
}

func (r *TutoringRepository) FindByStudent(ctx context.Context, studentID uint, statuses []domain.SessionStatus) ([]domain.TutoringSession, error) {
	found, err := r.dao.FindByStudent(ctx, studentID, sessionStatusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStudent -> %w", err)
	}

	return sessionsDaoToDomain(found), nil
}

func (r *TutoringRepository) FindByTutor(ctx context.Context, tutorID uint, statuses []domain.SessionStatus) ([]domain.TutoringSession, error) {
	found, err := r.dao.FindByTutor(ctx, tutorID, sessionStatusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByTutor -> %w", err)
	}

	return sessionsDaoToDomain(found), nil
}

func (r *TutoringRepository) FindByStatusUntil(ctx context.Context, status domain.SessionStatus, day domain.Date) ([]domain.TutoringSession, error) {
	found, err := r.dao.FindByStatusUntil(ctx, string(status), day.Time())
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStatusUntil -> %w", err)
	}

	return sessionsDaoToDomain(found), nil
}

func (r *TutoringRepository) SetLink(ctx context.Context, id uint, link string) (domain.TutoringSession, error) {
	updated, err := r.dao.Transition(ctx, id,
		[]string{string(domain.SessionReserved)}, string(domain.SessionScheduled),
		map[string]any{"link": link}, "")
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("r.dao.Transition -> %w", err)
	}

	return sessionDaoToDomain(updated), nil
}

// Transition moves the session between statuses; blockStatus is optional.
func (r *TutoringRepository) Transition(ctx context.Context, id uint, from []domain.SessionStatus, to domain.SessionStatus, blockStatus domain.BlockStatus) (domain.TutoringSession, error) {
	updated, err := r.dao.Transition(ctx, id, sessionStatusStrings(from), string(to), nil, string(blockStatus))
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("r.dao.Transition -> %w", err)
	}

	return sessionDaoToDomain(updated), nil
}

func (r *TutoringRepository) Cancel(ctx context.Context, id, userID uint, reason string, from []domain.SessionStatus) (domain.TutoringSession, error) {
	cancelled, err := r.dao.Cancel(ctx, id, userID, reason, sessionStatusStrings(from))
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("r.dao.Cancel -> %w", err)
	}

	return sessionDaoToDomain(cancelled), nil
}

func (r *TutoringRepository) Confirm(ctx context.Context, id uint, asStudent bool, at time.Time, from []domain.SessionStatus) (domain.TutoringSession, error) {
	confirmed, err := r.dao.Confirm(ctx, id, asStudent, at, sessionStatusStrings(from), string(domain.SessionHeld))
	if err != nil {
		return domain.TutoringSession{}, fmt.Errorf("r.dao.Confirm -> %w", err)
	}

	return sessionDaoToDomain(confirmed), nil
}

func sessionStatusStrings(statuses []domain.SessionStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}

	return out
}

func sessionsDaoToDomain(rows []dao.Session) []domain.TutoringSession {
	sessions := make([]domain.TutoringSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, sessionDaoToDomain(row))
	}

	return sessions
}

func sessionDaoToDomain(s dao.Session) domain.TutoringSession {
	start, _ := domain.ParseClock(s.StartTime)
	end, _ := domain.ParseClock(s.EndTime)

	return domain.TutoringSession{
		ID:                 s.ID,
		StudentID:          s.StudentID,
		StudentName:        userDaoToDomain(s.Student).FullName(),
		StudentPhone:       s.Student.Phone,
		TutorID:            s.TutorID,
		TutorName:          userDaoToDomain(s.Tutor).FullName(),
		TutorPhone:         s.Tutor.Phone,
		SubjectID:          s.SubjectID,
		SubjectName:        s.Subject.Name,
		BlockID:            s.BlockID,
		Topic:              s.Topic,
		Date:               domain.DateOf(s.SessionDate),
		Start:              start,
		End:                end,
		Modality:           domain.Modality(s.Modality),
		Link:               s.Link,
		Status:             domain.SessionStatus(s.Status),
		SupportFile:        s.SupportFile,
		Observations:       s.Observation,
		RequestedAt:        s.RequestedAt,
		StudentConfirmed:   s.StudentConfirmed,
		TutorConfirmed:     s.TutorConfirmed,
		StudentConfirmedAt: s.StudentConfirmedAt,
		TutorConfirmedAt:   s.TutorConfirmedAt,
	}
}
