package service

import (
	"context"
	"fmt"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository"
)

var ErrTutorSubjectNotFound = repository.ErrTutorSubjectNone

type TutorSubjectRepository interface {
	FindTutorSubjects(ctx context.Context, tutorID uint) ([]domain.TutorSubject, error)
	FindTutorSubjectByID(ctx context.Context, id uint) (domain.TutorSubject, error)
	CountTutorSubjects(ctx context.Context, tutorID uint) (int, error)
	DeleteTutorSubject(ctx context.Context, id uint) error
}

// TutorRevoker strips a user of the tutor role and everything attached to it.
type TutorRevoker interface {
	RevokeTutor(ctx context.Context, tutorID uint) error
}

type TutorSubjectService struct {
	repo    TutorSubjectRepository
	revoker TutorRevoker
}

func NewTutorSubjectService(repo TutorSubjectRepository, revoker TutorRevoker) *TutorSubjectService {
	return &TutorSubjectService{
		repo:    repo,
		revoker: revoker,
	}
}

func (s *TutorSubjectService) Mine(ctx context.Context, tutorID uint) ([]domain.TutorSubject, error) {
	links, err := s.repo.FindTutorSubjects(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindTutorSubjects -> %w", err)
	}

	return links, nil
}

// Remove drops one of the tutor's subjects. revoked is true when it was the
// last one and the tutor lost the role.
func (s *TutorSubjectService) Remove(ctx context.Context, tutorID, linkID uint) (revoked bool, err error) {
	link, err := s.repo.FindTutorSubjectByID(ctx, linkID)
	if err != nil {
		return false, fmt.Errorf("s.repo.FindTutorSubjectByID -> %w", err)
	}
	if link.TutorID != tutorID {
		return false, ErrPermissionDenied
	}

	if err = s.repo.DeleteTutorSubject(ctx, linkID); err != nil {
		return false, fmt.Errorf("s.repo.DeleteTutorSubject -> %w", err)
	}

	left, err := s.repo.CountTutorSubjects(ctx, tutorID)
	if err != nil {
		return false, fmt.Errorf("s.repo.CountTutorSubjects -> %w", err)
	}
	if left > 0 {
		return false, nil
	}

	if err = s.revoker.RevokeTutor(ctx, tutorID); err != nil {
		return false, fmt.Errorf("s.revoker.RevokeTutor -> %w", err)
	}

	return true, nil
}
