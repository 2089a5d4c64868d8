package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository"
)

var (
	ErrTutorRequestNotFound  = repository.ErrTutorRequestNotFound
	ErrTutorRequestReviewed  = repository.ErrTutorRequestReviewed
	ErrTutorRequestDuplicate = errors.New("an application for this subject is already in review or approved")
	ErrObservationRequired   = errors.New("an observation is required to deny an application")
	ErrInvalidRequestStatus  = errors.New("an application can only be approved or denied")
)

type TutorRequestRepository interface {
	Create(ctx context.Context, req domain.TutorRequest) (domain.TutorRequest, error)
	FindByID(ctx context.Context, id uint) (domain.TutorRequest, error)
	FindByApplicant(ctx context.Context, applicantID uint) ([]domain.TutorRequest, error)
	FindByStatus(ctx context.Context, statuses ...domain.RequestStatus) ([]domain.TutorRequest, error)
	HasActive(ctx context.Context, applicantID, subjectID uint, statuses ...domain.RequestStatus) (bool, error)
	Review(ctx context.Context, id uint, from, to domain.RequestStatus, observation, grantRole string) (domain.TutorRequest, error)
}

type FileStore interface {
	Save(originalName string, r io.Reader) (string, error)
	Path(name string) (string, error)
}

// Upload is one attached document of an application.
type Upload struct {
	Name    string
	Content io.Reader
}

type TutorRequestService struct {
	repo     TutorRequestRepository
	subjects SubjectRepository
	files    FileStore
	now      func() time.Time
	loc      *time.Location
}

func NewTutorRequestService(repo TutorRequestRepository, subjects SubjectRepository, files FileStore, loc *time.Location) *TutorRequestService {
	return &TutorRequestService{
		repo:     repo,
		subjects: subjects,
		files:    files,
		now:      time.Now,
		loc:      loc,
	}
}

func (s *TutorRequestService) Submit(ctx context.Context, applicant domain.User, subjectID uint, record, support Upload) (domain.TutorRequest, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		return domain.TutorRequest{}, fmt.Errorf("s.subjects.FindByID -> %w", err)
	}

	active, err := s.repo.HasActive(ctx, applicant.ID, subjectID, domain.RequestInReview, domain.RequestApproved)
	if err != nil {
		return domain.TutorRequest{}, fmt.Errorf("s.repo.HasActive -> %w", err)
	}
	if active {
		return domain.TutorRequest{}, ErrTutorRequestDuplicate
	}

	recordName, err := s.files.Save(record.Name, record.Content)
	if err != nil {
		return domain.TutorRequest{}, fmt.Errorf("s.files.Save -> %w", err)
	}
	supportName, err := s.files.Save(support.Name, support.Content)
	if err != nil {
		return domain.TutorRequest{}, fmt.Errorf("s.files.Save -> %w", err)
	}

	created, err := s.repo.Create(ctx, domain.TutorRequest{
		Applicant:      applicant,
		Subject:        subject,
		SubmittedOn:    domain.DateOf(s.now().In(s.loc)),
		Status:         domain.RequestInReview,
		AcademicRecord: recordName,
		SupportFile:    supportName,
	})
	if err != nil {
		return domain.TutorRequest{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *TutorRequestService) Mine(ctx context.Context, applicantID uint) ([]domain.TutorRequest, error) {
	reqs, err := s.repo.FindByApplicant(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByApplicant -> %w", err)
	}

	return reqs, nil
}

func (s *TutorRequestService) Pending(ctx context.Context) ([]domain.TutorRequest, error) {
	reqs, err := s.repo.FindByStatus(ctx, domain.RequestInReview)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByStatus -> %w", err)
	}

	return reqs, nil
}

func (s *TutorRequestService) History(ctx context.Context) ([]domain.TutorRequest, error) {
	reqs, err := s.repo.FindByStatus(ctx, domain.RequestApproved, domain.RequestDenied, domain.RequestRevoked)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByStatus -> %w", err)
	}

	return reqs, nil
}

// Review decides an application in review. Approval makes the applicant a tutor
// of the subject.
func (s *TutorRequestService) Review(ctx context.Context, id uint, status domain.RequestStatus, observation string) (domain.TutorRequest, error) {
	observation = strings.TrimSpace(observation)

	grant := ""
	switch status {
	case domain.RequestApproved:
		grant = domain.RoleTutor
	case domain.RequestDenied:
		if observation == "" {
			return domain.TutorRequest{}, ErrObservationRequired
		}
	default:
		return domain.TutorRequest{}, ErrInvalidRequestStatus
	}

	reviewed, err := s.repo.Review(ctx, id, domain.RequestInReview, status, observation, grant)
	if err != nil {
		return domain.TutorRequest{}, fmt.Errorf("s.repo.Review -> %w", err)
	}

	return reviewed, nil
}

func (s *TutorRequestService) FilePath(name string) (string, error) {
	return s.files.Path(name)
}
