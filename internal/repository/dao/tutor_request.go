package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrTutorRequestNotFound = errors.New("tutor request not found")
	ErrTutorRequestReviewed = errors.New("tutor request was already reviewed")
)

type TutorRequest struct {
	ID             uint      `gorm:"primaryKey"`
	ApplicantID    uint      `gorm:"not null;index"`
	Applicant      User      `gorm:"foreignKey:ApplicantID"`
	SubjectID      uint      `gorm:"not null;index"`
	Subject        Subject   `gorm:"foreignKey:SubjectID"`
	SubmittedOn    time.Time `gorm:"type:date;not null"`
	Status         string    `gorm:"not null;index"`
	AcademicRecord string    `gorm:"not null"`
	SupportFile    string    `gorm:"not null"`
	Observation    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type TutorRequestDAO struct {
	db *gorm.DB
}

func NewTutorRequestDAO(db *gorm.DB) *TutorRequestDAO {
	return &TutorRequestDAO{
		db: db,
	}
}

func (d *TutorRequestDAO) preloaded(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).Preload("Applicant").Preload("Applicant.Roles").Preload("Subject")
}

func (d *TutorRequestDAO) Insert(ctx context.Context, req TutorRequest) (TutorRequest, error) {
	result := d.db.WithContext(ctx).Omit("Applicant", "Subject").Create(&req)
	if result.Error != nil {
		return TutorRequest{}, result.Error
	}

	return d.FindByID(ctx, req.ID)
}

func (d *TutorRequestDAO) FindByID(ctx context.Context, id uint) (TutorRequest, error) {
	var req TutorRequest

	result := d.preloaded(ctx).First(&req, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return TutorRequest{}, ErrTutorRequestNotFound
		}

		return TutorRequest{}, result.Error
	}

	return req, nil
}

func (d *TutorRequestDAO) FindByApplicant(ctx context.Context, applicantID uint) ([]TutorRequest, error) {
	var reqs []TutorRequest

	result := d.preloaded(ctx).Where("applicant_id = ?", applicantID).Order("submitted_on DESC, id DESC").Find(&reqs)
	if result.Error != nil {
		return nil, result.Error
	}

	return reqs, nil
}

func (d *TutorRequestDAO) FindByStatus(ctx context.Context, statuses []string) ([]TutorRequest, error) {
	var reqs []TutorRequest

	result := d.preloaded(ctx).Where("status IN ?", statuses).Order("submitted_on DESC, id DESC").Find(&reqs)
	if result.Error != nil {
		return nil, result.Error
	}

	return reqs, nil
}

func (d *TutorRequestDAO) CountActive(ctx context.Context, applicantID, subjectID uint, statuses []string) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&TutorRequest{}).
		Where("applicant_id = ? AND subject_id = ? AND status IN ?", applicantID, subjectID, statuses).
		Count(&count)

	return count, result.Error
}

// Review moves a request out of fromStatus. When grantRole is set the applicant also
// gets that role and the subject link in the same transaction.
func (d *TutorRequestDAO) Review(ctx context.Context, id uint, fromStatus, toStatus, observation, grantRole string) (TutorRequest, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req TutorRequest
		if err := tx.First(&req, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTutorRequestNotFound
			}
			return err
		}

		result := tx.Model(&TutorRequest{}).
			Where("id = ? AND status = ?", id, fromStatus).
			Updates(map[string]any{"status": toStatus, "observation": observation})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTutorRequestReviewed
		}

		if grantRole == "" {
			return nil
		}

		var role Role
		if err := tx.First(&role, "name = ?", grantRole).Error; err != nil {
			return ErrRoleNotFound
		}
		if err := tx.Model(&User{ID: req.ApplicantID}).Association("Roles").Append(&role); err != nil {
			return err
		}

		link := TutorSubject{TutorID: req.ApplicantID, SubjectID: req.SubjectID}

		return tx.Omit("Tutor", "Subject").
			Where(TutorSubject{TutorID: req.ApplicantID, SubjectID: req.SubjectID}).
			FirstOrCreate(&link).Error
	})
	if err != nil {
		return TutorRequest{}, err
	}

	return d.FindByID(ctx, id)
}
