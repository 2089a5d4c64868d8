package repository

import (
	"context"
	"fmt"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository/dao"
)

var (
	ErrTutorRequestNotFound = dao.ErrTutorRequestNotFound
	ErrTutorRequestReviewed = dao.ErrTutorRequestReviewed
)

type TutorRequestDAO interface {
	Insert(ctx context.Context, req dao.TutorRequest) (dao.TutorRequest, error)
	FindByID(ctx context.Context, id uint) (dao.TutorRequest, error)
	FindByApplicant(ctx context.Context, applicantID uint) ([]dao.TutorRequest, error)
	FindByStatus(ctx context.Context, statuses []string) ([]dao.TutorRequest, error)
	CountActive(ctx context.Context, applicantID, subjectID uint, statuses []string) (int64, error)
	Review(ctx context.Context, id uint, fromStatus, toStatus, observation, grantRole string) (dao.TutorRequest, error)
}

type TutorRequestRepository struct {
	dao TutorRequestDAO
}

func NewTutorRequestRepository(dao TutorRequestDAO) *TutorRequestRepository {
	return &TutorRequestRepository{
		dao: dao,
	}
}

func (r *TutorRequestRepository) Create(ctx context.Context, req domain.TutorRequest) (domain.TutorRequest, error) {
	created, err := r.dao.Insert(ctx, dao.TutorRequest{
		ApplicantID:    req.Applicant.ID,
		SubjectID:      req.Subject.ID,
		SubmittedOn:    req.SubmittedOn.Time(),
		Status:         string(req.Status),
		AcademicRecord: req.AcademicRecord,
		SupportFile:    req.SupportFile,
	})
	if err != nil {
		return domain.TutorRequest{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return tutorRequestDaoToDomain(created), nil
}

func (r *TutorRequestRepository) FindByID(ctx context.Context, id uint) (domain.TutorRequest, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.TutorRequest{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return tutorRequestDaoToDomain(found), nil
}

func (r *TutorRequestRepository) FindByApplicant(ctx context.Context, applicantID uint) ([]domain.TutorRequest, error) {
	found, err := r.dao.FindByApplicant(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByApplicant -> %w", err)
	}

	return tutorRequestsDaoToDomain(found), nil
}

func (r *TutorRequestRepository) FindByStatus(ctx context.Context, statuses ...domain.RequestStatus) ([]domain.TutorRequest, error) {
	found, err := r.dao.FindByStatus(ctx, requestStatusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStatus -> %w", err)
	}

	return tutorRequestsDaoToDomain(found), nil
}

func (r *TutorRequestRepository) HasActive(ctx context.Context, applicantID, subjectID uint, statuses ...domain.RequestStatus) (bool, error) {
	count, err := r.dao.CountActive(ctx, applicantID, subjectID, requestStatusStrings(statuses))
	if err != nil {
		return false, fmt.Errorf("r.dao.CountActive -> %w", err)
	}

	return count > 0, nil
}

func (r *TutorRequestRepository) Review(ctx context.Context, id uint, from, to domain.RequestStatus, observation, grantRole string) (domain.TutorRequest, error) {
	reviewed, err := r.dao.Review(ctx, id, string(from), string(to), observation, grantRole)
	if err != nil {
		return domain.TutorRequest{}, fmt.Errorf("r.dao.Review -> %w", err)
	}

	return tutorRequestDaoToDomain(reviewed), nil
}

func requestStatusStrings(statuses []domain.RequestStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}

	return out
}

func tutorRequestsDaoToDomain(found []dao.TutorRequest) []domain.TutorRequest {
	reqs := make([]domain.TutorRequest, 0, len(found))
	for _, req := range found {
		reqs = append(reqs, tutorRequestDaoToDomain(req))
	}

	return reqs
}

func tutorRequestDaoToDomain(req dao.TutorRequest) domain.TutorRequest {
	return domain.TutorRequest{
		ID:             req.ID,
		Applicant:      userDaoToDomain(req.Applicant),
		Subject:        subjectDaoToDomain(req.Subject),
		SubmittedOn:    domain.DateOf(req.SubmittedOn),
		Status:         domain.RequestStatus(req.Status),
		AcademicRecord: req.AcademicRecord,
		SupportFile:    req.SupportFile,
		Observation:    req.Observation,
	}
}
