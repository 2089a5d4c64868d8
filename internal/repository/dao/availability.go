package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrBlockNotFound    = errors.New("availability block not found")
	ErrBlockExists      = errors.New("an availability block already exists at that date and time")
	ErrBlockLocked      = errors.New("availability block is reserved or occupied")
	ErrMonthHasBookings = errors.New("the month already has reserved or occupied blocks")
)

const (
	blockAvailable = "DISPONIBLE"
	blockReserved  = "RESERVADO"
	blockOccupied  = "OCUPADO"
)

var lockedBlockStatuses = []string{blockReserved, blockOccupied}

type WeeklyBlock struct {
	ID        uint   `gorm:"primaryKey"`
	TutorID   uint   `gorm:"not null;index"`
	Tutor     User   `gorm:"foreignKey:TutorID"`
	Day       string `gorm:"not null"`
	StartTime string `gorm:"type:varchar(8);not null"`
	EndTime   string `gorm:"type:varchar(8);not null"`
	Modality  string `gorm:"not null"`

	CreatedAt time.Time
}

type MonthlyBlock struct {
	ID        uint      `gorm:"primaryKey"`
	TutorID   uint      `gorm:"not null;uniqueIndex:idx_monthly_slot"`
	Tutor     User      `gorm:"foreignKey:TutorID"`
	SlotDate  time.Time `gorm:"type:date;not null;uniqueIndex:idx_monthly_slot"`
	StartTime string    `gorm:"type:varchar(8);not null;uniqueIndex:idx_monthly_slot"`
	EndTime   string    `gorm:"type:varchar(8);not null"`
	Modality  string
	Status    string `gorm:"not null;index"`
	Origin    string `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type AvailabilityDAO struct {
	db *gorm.DB
}

func NewAvailabilityDAO(db *gorm.DB) *AvailabilityDAO {
	return &AvailabilityDAO{
		db: db,
	}
}

// ReplaceWeekly drops the tutor's template and stores blocks in its place.
func (d *AvailabilityDAO) ReplaceWeekly(ctx context.Context, tutorID uint, blocks []WeeklyBlock) ([]WeeklyBlock, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tutor_id = ?", tutorID).Delete(&WeeklyBlock{}).Error; err != nil {
			return err
		}
		if len(blocks) == 0 {
			return nil
		}

		for i := range blocks {
			blocks[i].TutorID = tutorID
		}

		return tx.Omit("Tutor").Create(&blocks).Error
	})
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

func (d *AvailabilityDAO) FindWeekly(ctx context.Context, tutorID uint) ([]WeeklyBlock, error) {
	var blocks []WeeklyBlock

	result := d.db.WithContext(ctx).Where("tutor_id = ?", tutorID).Order("start_time, id").Find(&blocks)
	if result.Error != nil {
		return nil, result.Error
	}

	return blocks, nil
}

// ReplaceMonth regenerates the tutor's blocks in [from, to). It refuses when any
// block in range is locked by a booking.
func (d *AvailabilityDAO) ReplaceMonth(ctx context.Context, tutorID uint, from, to time.Time, blocks []MonthlyBlock) (int, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inRange := tx.Where("tutor_id = ? AND slot_date >= ? AND slot_date < ?", tutorID, from, to).
			Session(&gorm.Session{})

		var locked int64
		if err := inRange.Model(&MonthlyBlock{}).
			Where("status IN ?", lockedBlockStatuses).Count(&locked).Error; err != nil {
			return err
		}
		if locked > 0 {
			return ErrMonthHasBookings
		}

		if err := inRange.Delete(&MonthlyBlock{}).Error; err != nil {
			return err
		}
		if len(blocks) == 0 {
			return nil
		}

		if err := tx.Omit("Tutor").CreateInBatches(&blocks, 100).Error; err != nil {
			if isUniqueViolation(err, "idx_monthly_slot") {
				return ErrBlockExists
			}
			return err
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(blocks), nil
}

func (d *AvailabilityDAO) FindMonthly(ctx context.Context, tutorID uint, from, to time.Time) ([]MonthlyBlock, error) {
	var blocks []MonthlyBlock

	result := d.db.WithContext(ctx).Preload("Tutor").
		Where("tutor_id = ? AND slot_date >= ? AND slot_date < ?", tutorID, from, to).
		Order("slot_date, start_time").
		Find(&blocks)
	if result.Error != nil {
		return nil, result.Error
	}

	return blocks, nil
}

func (d *AvailabilityDAO) FindBlockByID(ctx context.Context, id uint) (MonthlyBlock, error) {
	var block MonthlyBlock

	result := d.db.WithContext(ctx).Preload("Tutor").First(&block, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return MonthlyBlock{}, ErrBlockNotFound
		}

		return MonthlyBlock{}, result.Error
	}

	return block, nil
}

func (d *AvailabilityDAO) DeleteBlock(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).
		Where("id = ? AND status NOT IN ?", id, lockedBlockStatuses).
		Delete(&MonthlyBlock{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBlockLocked
	}

	return nil
}

func (d *AvailabilityDAO) UpdateModality(ctx context.Context, id uint, modality string) (MonthlyBlock, error) {
	result := d.db.WithContext(ctx).Model(&MonthlyBlock{}).
		Where("id = ? AND status NOT IN ?", id, lockedBlockStatuses).
		Update("modality", modality)
	if result.Error != nil {
		return MonthlyBlock{}, result.Error
	}
	if result.RowsAffected == 0 {
		return MonthlyBlock{}, ErrBlockLocked
	}

	return d.FindBlockByID(ctx, id)
}

// FindAvailableBySubject lists open blocks of every tutor linked to the subject.
func (d *AvailabilityDAO) FindAvailableBySubject(ctx context.Context, subjectID uint, from, to time.Time) ([]MonthlyBlock, error) {
	var blocks []MonthlyBlock

	result := d.db.WithContext(ctx).Preload("Tutor").
		Joins("JOIN tutor_subjects ON tutor_subjects.tutor_id = monthly_blocks.tutor_id").
		Where("tutor_subjects.subject_id = ?", subjectID).
		Where("monthly_blocks.status = ?", blockAvailable).
		Where("monthly_blocks.slot_date >= ? AND monthly_blocks.slot_date <= ?", from, to).
		Order("monthly_blocks.slot_date, monthly_blocks.start_time").
		Find(&blocks)
	if result.Error != nil {
		return nil, result.Error
	}

	return blocks, nil
}

// RevokeTutor removes the role, the subject links and every block that is not
// backing a session. Approved requests move to revokedStatus.
func (d *AvailabilityDAO) RevokeTutor(ctx context.Context, tutorID uint, roleName, approvedStatus, revokedStatus string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role Role
		if err := tx.First(&role, "name = ?", roleName).Error; err != nil {
			return ErrRoleNotFound
		}
		if err := tx.Model(&User{ID: tutorID}).Association("Roles").Delete(&role); err != nil {
			return err
		}

		return dropTutorData(tx, tutorID, approvedStatus, revokedStatus)
	})
}

// dropTutorData must run inside the caller's transaction.
func dropTutorData(tx *gorm.DB, tutorID uint, approvedStatus, revokedStatus string) error {
	if err := tx.Where("tutor_id = ?", tutorID).Delete(&TutorSubject{}).Error; err != nil {
		return err
	}
	if err := tx.Where("tutor_id = ?", tutorID).Delete(&WeeklyBlock{}).Error; err != nil {
		return err
	}
	if err := tx.Where("tutor_id = ? AND status NOT IN ?", tutorID, lockedBlockStatuses).
		Delete(&MonthlyBlock{}).Error; err != nil {
		return err
	}

	return tx.Model(&TutorRequest{}).
		Where("applicant_id = ? AND status = ?", tutorID, approvedStatus).
		Update("status", revokedStatus).Error
}
