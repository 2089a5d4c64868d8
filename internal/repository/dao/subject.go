package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrSubjectNotFound   = errors.New("subject not found")
	ErrSubjectCodeExists = errors.New("subject code already exists")
	ErrSubjectInUse      = errors.New("subject is referenced by tutors, requests or sessions")
	ErrTutorSubjectNone  = errors.New("tutor subject not found")
)

type Subject struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"not null"`
	Code string `gorm:"unique;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type TutorSubject struct {
	ID        uint    `gorm:"primaryKey"`
	TutorID   uint    `gorm:"not null;uniqueIndex:idx_tutor_subject"`
	Tutor     User    `gorm:"foreignKey:TutorID"`
	SubjectID uint    `gorm:"not null;uniqueIndex:idx_tutor_subject"`
	Subject   Subject `gorm:"foreignKey:SubjectID"`

	CreatedAt time.Time
}

type SubjectDAO struct {
	db *gorm.DB
}

func NewSubjectDAO(db *gorm.DB) *SubjectDAO {
	return &SubjectDAO{
		db: db,
	}
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		strings.Contains(pgErr.Message, constraint)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

func (d *SubjectDAO) Insert(ctx context.Context, subject Subject) (Subject, error) {
	result := d.db.WithContext(ctx).Create(&subject)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_subjects_code") {
			return Subject{}, ErrSubjectCodeExists
		}

		return Subject{}, result.Error
	}

	return subject, nil
}

func (d *SubjectDAO) Update(ctx context.Context, subject Subject) (Subject, error) {
	result := d.db.WithContext(ctx).Model(&Subject{ID: subject.ID}).Updates(map[string]any{
		"name": subject.Name,
		"code": subject.Code,
	})
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_subjects_code") {
			return Subject{}, ErrSubjectCodeExists
		}

		return Subject{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Subject{}, ErrSubjectNotFound
	}

	return d.FindByID(ctx, subject.ID)
}

func (d *SubjectDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Subject{}, id)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return ErrSubjectInUse
		}

		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubjectNotFound
	}

	return nil
}

func (d *SubjectDAO) FindByID(ctx context.Context, id uint) (Subject, error) {
	var subject Subject

	result := d.db.WithContext(ctx).First(&subject, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Subject{}, ErrSubjectNotFound
		}

		return Subject{}, result.Error
	}

	return subject, nil
}

func (d *SubjectDAO) FindByCode(ctx context.Context, code string) (Subject, error) {
	var subject Subject

	result := d.db.WithContext(ctx).First(&subject, "code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Subject{}, ErrSubjectNotFound
		}

		return Subject{}, result.Error
	}

	return subject, nil
}

func (d *SubjectDAO) FindAll(ctx context.Context) ([]Subject, error) {
	var subjects []Subject

	result := d.db.WithContext(ctx).Order("name").Find(&subjects)
	if result.Error != nil {
		return nil, result.Error
	}

	return subjects, nil
}

func (d *SubjectDAO) FindTutorSubjects(ctx context.Context, tutorID uint) ([]TutorSubject, error) {
	var links []TutorSubject

	result := d.db.WithContext(ctx).Preload("Subject").Where("tutor_id = ?", tutorID).Order("id").Find(&links)
	if result.Error != nil {
		return nil, result.Error
	}

	return links, nil
}

func (d *SubjectDAO) FindTutorSubjectByID(ctx context.Context, id uint) (TutorSubject, error) {
	var link TutorSubject

	result := d.db.WithContext(ctx).Preload("Subject").First(&link, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return TutorSubject{}, ErrTutorSubjectNone
		}

		return TutorSubject{}, result.Error
	}

	return link, nil
}

func (d *SubjectDAO) CountTutorSubjects(ctx context.Context, tutorID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&TutorSubject{}).Where("tutor_id = ?", tutorID).Count(&count)

	return count, result.Error
}

func (d *SubjectDAO) IsTutorOf(ctx context.Context, tutorID, subjectID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&TutorSubject{}).
		Where("tutor_id = ? AND subject_id = ?", tutorID, subjectID).
		Count(&count)

	return count > 0, result.Error
}

func (d *SubjectDAO) DeleteTutorSubject(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&TutorSubject{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTutorSubjectNone
	}

	return nil
}
