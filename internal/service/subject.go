package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository"
)

var (
	ErrSubjectNotFound   = repository.ErrSubjectNotFound
	ErrSubjectCodeExists = repository.ErrSubjectCodeExists
	ErrSubjectInUse      = repository.ErrSubjectInUse
)

type SubjectRepository interface {
	Create(ctx context.Context, subject domain.Subject) (domain.Subject, error)
	Update(ctx context.Context, subject domain.Subject) (domain.Subject, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (domain.Subject, error)
	FindByCode(ctx context.Context, code string) (domain.Subject, error)
	FindAll(ctx context.Context) ([]domain.Subject, error)
}

type SubjectService struct {
	repo SubjectRepository
}

func NewSubjectService(repo SubjectRepository) *SubjectService {
	return &SubjectService{
		repo: repo,
	}
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *SubjectService) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	subjects, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return subjects, nil
}

func (s *SubjectService) GetSubject(ctx context.Context, id uint) (domain.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Subject{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return subject, nil
}

// codeTaken reports the subject already holding code, ignoring exceptID.
func (s *SubjectService) codeTaken(ctx context.Context, code string, exceptID uint) error {
	existing, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return nil
		}
		return fmt.Errorf("s.repo.FindByCode -> %w", err)
	}
	if existing.ID == exceptID {
		return nil
	}

	return fmt.Errorf("%w: the code %s is already registered for subject %s", ErrSubjectCodeExists, code, existing.Name)
}

func (s *SubjectService) CreateSubject(ctx context.Context, subject domain.Subject) (domain.Subject, error) {
	subject.Name = strings.TrimSpace(subject.Name)
	subject.Code = NormalizeCode(subject.Code)

	if err := s.codeTaken(ctx, subject.Code, 0); err != nil {
		return domain.Subject{}, err
	}

	created, err := s.repo.Create(ctx, subject)
	if err != nil {
		return domain.Subject{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *SubjectService) UpdateSubject(ctx context.Context, subject domain.Subject) (domain.Subject, error) {
	subject.Name = strings.TrimSpace(subject.Name)
	subject.Code = NormalizeCode(subject.Code)

	if err := s.codeTaken(ctx, subject.Code, subject.ID); err != nil {
		return domain.Subject{}, err
	}

	updated, err := s.repo.Update(ctx, subject)
	if err != nil {
		return domain.Subject{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *SubjectService) DeleteSubject(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *SubjectService) CheckCode(ctx context.Context, code string) (domain.CodeCheck, error) {
	code = NormalizeCode(code)

	existing, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return domain.CodeCheck{Exists: false, Message: "the code is available"}, nil
		}
		return domain.CodeCheck{}, fmt.Errorf("s.repo.FindByCode -> %w", err)
	}

	return domain.CodeCheck{
		Exists:      true,
		Message:     fmt.Sprintf("the code %s is already registered for subject %s", code, existing.Name),
		SubjectName: existing.Name,
	}, nil
}
