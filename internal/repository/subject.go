package repository

import (
	"context"
	"fmt"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository/dao"
)

var (
	ErrSubjectNotFound   = dao.ErrSubjectNotFound
	ErrSubjectCodeExists = dao.ErrSubjectCodeExists
	ErrSubjectInUse      = dao.ErrSubjectInUse
	ErrTutorSubjectNone  = dao.ErrTutorSubjectNone
)

type SubjectDAO interface {
	Insert(ctx context.Context, subject dao.Subject) (dao.Subject, error)
	Update(ctx context.Context, subject dao.Subject) (dao.Subject, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (dao.Subject, error)
	FindByCode(ctx context.Context, code string) (dao.Subject, error)
	FindAll(ctx context.Context) ([]dao.Subject, error)
	FindTutorSubjects(ctx context.Context, tutorID uint) ([]dao.TutorSubject, error)
	FindTutorSubjectByID(ctx context.Context, id uint) (dao.TutorSubject, error)
	CountTutorSubjects(ctx context.Context, tutorID uint) (int64, error)
	IsTutorOf(ctx context.Context, tutorID, subjectID uint) (bool, error)
	DeleteTutorSubject(ctx context.Context, id uint) error
}

type SubjectRepository struct {
	dao SubjectDAO
}

func NewSubjectRepository(dao SubjectDAO) *SubjectRepository {
	return &SubjectRepository{
		dao: dao,
	}
}

func (r *SubjectRepository) Create(ctx context.Context, subject domain.Subject) (domain.Subject, error) {
	created, err := r.dao.Insert(ctx, dao.Subject{Name: subject.Name, Code: subject.Code})
	if err != nil {
		return domain.Subject{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return subjectDaoToDomain(created), nil
}

func (r *SubjectRepository) Update(ctx context.Context, subject domain.Subject) (domain.Subject, error) {
	updated, err := r.dao.Update(ctx, dao.Subject{ID: subject.ID, Name: subject.Name, Code: subject.Code})
	if err != nil {
		return domain.Subject{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return subjectDaoToDomain(updated), nil
}

func (r *SubjectRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *SubjectRepository) FindByID(ctx context.Context, id uint) (domain.Subject, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Subject{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return subjectDaoToDomain(found), nil
}

func (r *SubjectRepository) FindByCode(ctx context.Context, code string) (domain.Subject, error) {
	found, err := r.dao.FindByCode(ctx, code)
	if err != nil {
		return domain.Subject{}, fmt.Errorf("r.dao.FindByCode -> %w", err)
	}

	return subjectDaoToDomain(found), nil
}

func (r *SubjectRepository) FindAll(ctx context.Context) ([]domain.Subject, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	subjects := make([]domain.Subject, 0, len(found))
	for _, s := range found {
		subjects = append(subjects, subjectDaoToDomain(s))
	}

	return subjects, nil
}

func (r *SubjectRepository) FindTutorSubjects(ctx context.Context, tutorID uint) ([]domain.TutorSubject, error) {
	found, err := r.dao.FindTutorSubjects(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindTutorSubjects -> %w", err)
	}

	links := make([]domain.TutorSubject, 0, len(found))
	for _, l := range found {
		links = append(links, tutorSubjectDaoToDomain(l))
	}

	return links, nil
}

func (r *SubjectRepository) FindTutorSubjectByID(ctx context.Context, id uint) (domain.TutorSubject, error) {
	found, err := r.dao.FindTutorSubjectByID(ctx, id)
	if err != nil {
		return domain.TutorSubject{}, fmt.Errorf("r.dao.FindTutorSubjectByID -> %w", err)
	}

	return tutorSubjectDaoToDomain(found), nil
}

func (r *SubjectRepository) CountTutorSubjects(ctx context.Context, tutorID uint) (int, error) {
	count, err := r.dao.CountTutorSubjects(ctx, tutorID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountTutorSubjects -> %w", err)
	}

	return int(count), nil
}

func (r *SubjectRepository) IsTutorOf(ctx context.Context, tutorID, subjectID uint) (bool, error) {
	ok, err := r.dao.IsTutorOf(ctx, tutorID, subjectID)
	if err != nil {
		return false, fmt.Errorf("r.dao.IsTutorOf -> %w", err)
	}

	return ok, nil
}

func (r *SubjectRepository) DeleteTutorSubject(ctx context.Context, id uint) error {
	if err := r.dao.DeleteTutorSubject(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteTutorSubject -> %w", err)
	}

	return nil
}

func subjectDaoToDomain(s dao.Subject) domain.Subject {
	return domain.Subject{
		ID:   s.ID,
		Name: s.Name,
		Code: s.Code,
	}
}

func tutorSubjectDaoToDomain(l dao.TutorSubject) domain.TutorSubject {
	return domain.TutorSubject{
		ID:          l.ID,
		TutorID:     l.TutorID,
		SubjectID:   l.SubjectID,
		SubjectName: l.Subject.Name,
		SubjectCode: l.Subject.Code,
	}
}
