package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSessionNotFound     = errors.New("tutoring session not found")
	ErrBlockNotAvailable   = errors.New("the block is no longer available")
	ErrScheduleConflict    = errors.New("the student already has a session at that date and time")
	ErrSessionStateChanged = errors.New("the session is not in a state that allows this action")
)

const sessionCancelled = "CANCELADA"

type Session struct {
	ID          uint      `gorm:"primaryKey"`
	StudentID   uint      `gorm:"not null;index"`
	Student     User      `gorm:"foreignKey:StudentID"`
	TutorID     uint      `gorm:"not null;index"`
	Tutor       User      `gorm:"foreignKey:TutorID"`
	SubjectID   uint      `gorm:"not null"`
	Subject     Subject   `gorm:"foreignKey:SubjectID"`
	BlockID     uint      `gorm:"not null;index"`
	Topic       string    `gorm:"not null"`
	SessionDate time.Time `gorm:"type:date;not null;index"`
	StartTime   string    `gorm:"type:varchar(8);not null"`
	EndTime     string    `gorm:"type:varchar(8);not null"`
	Modality    string
	Link        string
	Status      string `gorm:"not null;index"`
	SupportFile string
	Observation string

	RequestedAt        time.Time `gorm:"not null"`
	StudentConfirmed   bool      `gorm:"not null;default:false"`
	TutorConfirmed     bool      `gorm:"not null;default:false"`
	StudentConfirmedAt *time.Time
	TutorConfirmedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Session) TableName() string {
	return "tutoring_sessions"
}

type Cancellation struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID uint   `gorm:"not null;index"`
	UserID    uint   `gorm:"not null"`
	Reason    string `gorm:"not null"`

	CreatedAt time.Time
}

func (Cancellation) TableName() string {
	return "session_cancellations"
}

type TutoringDAO struct {
	db *gorm.DB
}

func NewTutoringDAO(db *gorm.DB) *TutoringDAO {
	return &TutoringDAO{
		db: db,
	}
}

func (d *TutoringDAO) preloaded(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).Preload("Student").Preload("Tutor").Preload("Subject")
}

// Reserve books the block for the session. The block row is locked so two students
// cannot take the same slot.
func (d *TutoringDAO) Reserve(ctx context.Context, session Session, reservedStatus string) (Session, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var block MonthlyBlock
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&block, session.BlockID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBlockNotFound
			}
			return err
		}
		if block.Status != blockAvailable {
			return ErrBlockNotAvailable
		}

		var conflicts int64
		if err := tx.Model(&Session{}).
			Where("student_id = ? AND session_date = ? AND start_time = ? AND status <> ?",
				session.StudentID, block.SlotDate, block.StartTime, sessionCancelled).
			Count(&conflicts).Error; err != nil {
			return err
		}
		if conflicts > 0 {
			return ErrScheduleConflict
		}

		session.TutorID = block.TutorID
		session.SessionDate = block.SlotDate
		session.StartTime = block.StartTime
		session.EndTime = block.EndTime
		session.Modality = block.Modality
		session.Status = reservedStatus
		if err := tx.Omit("Student", "Tutor", "Subject").Create(&session).Error; err != nil {
			return err
		}

		return tx.Model(&MonthlyBlock{}).Where("id = ?", block.ID).Update("status", blockReserved).Error
	})
	if err != nil {
		return Session{}, err
	}

	return d.FindByID(ctx, session.ID)
}

func (d *TutoringDAO) FindByID(ctx context.Context, id uint) (Session, error) {
	var session Session

	result := d.preloaded(ctx).First(&session, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Session{}, ErrSessionNotFound
		}

		return Session{}, result.Error
	}

	return session, nil
}

func (d *TutoringDAO) find(ctx context.Context, column string, id uint, statuses []string) ([]Session, error) {
	var sessions []Session

	q := d.preloaded(ctx).Where(column+" = ?", id)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	result := q.Order("session_date, start_time").Find(&sessions)
	if result.Error != nil {
		return nil, result.Error
	}

	return sessions, nil
}

func (d *TutoringDAO) FindByStudent(ctx context.Context, studentID uint, statuses []string) ([]Session, error) {
	return d.find(ctx, "student_id", studentID, statuses)
}

func (d *TutoringDAO) FindByTutor(ctx context.Context, tutorID uint, statuses []string) ([]Session, error) {
	return d.find(ctx, "tutor_id", tutorID, statuses)
}

// FindByStatusUntil lists sessions in status scheduled on or before day.
func (d *TutoringDAO) FindByStatusUntil(ctx context.Context, status string, day time.Time) ([]Session, error) {
	var sessions []Session

	result := d.preloaded(ctx).
		Where("status = ? AND session_date <= ?", status, day).
		Order("session_date, start_time").
		Find(&sessions)
	if result.Error != nil {
		return nil, result.Error
	}

	return sessions, nil
}

// Transition moves the session from one of fromStatuses to toStatus, applying extra
// column updates. A block status, when given, is written to the backing block.
func (d *TutoringDAO) Transition(ctx context.Context, id uint, fromStatuses []string, toStatus string, extra map[string]any, blockStatus string) (Session, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": toStatus}
		for k, v := range extra {
			updates[k] = v
		}

		result := tx.Model(&Session{}).Where("id = ? AND status IN ?", id, fromStatuses).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSessionStateChanged
		}
		if blockStatus == "" {
			return nil
		}

		return tx.Model(&MonthlyBlock{}).
			Where("id = (?)", tx.Model(&Session{}).Select("block_id").Where("id = ?", id)).
			Update("status", blockStatus).Error
	})
	if err != nil {
		return Session{}, err
	}

	return d.FindByID(ctx, id)
}

// Cancel frees the block and records who cancelled and why.
func (d *TutoringDAO) Cancel(ctx context.Context, id, userID uint, reason string, fromStatuses []string) (Session, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session Session
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}

		result := tx.Model(&Session{}).
			Where("id = ? AND status IN ?", id, fromStatuses).
			Updates(map[string]any{"status": sessionCancelled, "observation": reason})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSessionStateChanged
		}

		if err := tx.Model(&MonthlyBlock{}).Where("id = ?", session.BlockID).
			Update("status", blockAvailable).Error; err != nil {
			return err
		}

		return tx.Create(&Cancellation{SessionID: id, UserID: userID, Reason: reason}).Error
	})
	if err != nil {
		return Session{}, err
	}

	return d.FindByID(ctx, id)
}

// Confirm records the attendance of one party. When both parties have confirmed the
// session becomes heldStatus and its block is occupied.
func (d *TutoringDAO) Confirm(ctx context.Context, id uint, asStudent bool, at time.Time, fromStatuses []string, heldStatus string) (Session, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session Session
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}

		allowed := false
		for _, st := range fromStatuses {
			if session.Status == st {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrSessionStateChanged
		}

		updates := map[string]any{}
		if asStudent {
			updates["student_confirmed"] = true
			updates["student_confirmed_at"] = at
			session.StudentConfirmed = true
		} else {
			updates["tutor_confirmed"] = true
			updates["tutor_confirmed_at"] = at
			session.TutorConfirmed = true
		}

		both := session.StudentConfirmed && session.TutorConfirmed
		if both {
			updates["status"] = heldStatus
		}

		if err := tx.Model(&Session{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if !both {
			return nil
		}

		return tx.Model(&MonthlyBlock{}).Where("id = ?", session.BlockID).Update("status", blockOccupied).Error
	})
	if err != nil {
		return Session{}, err
	}

	return d.FindByID(ctx, id)
}
