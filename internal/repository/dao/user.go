package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserEmailExists = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserHasSessions = errors.New("user still has tutoring sessions")
	ErrRoleNotFound    = errors.New("role not found")
)

type Role struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"unique;not null"`
	Description string
}

type User struct {
	ID uint `gorm:"primaryKey"`

	FirstName     string `gorm:"not null"`
	MiddleName    string
	LastName      string `gorm:"not null"`
	SecondSurname string
	Email         string `gorm:"unique;not null"`
	Phone         string

	Roles []Role `gorm:"many2many:user_roles;"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_users_email"`) {
			return User{}, ErrUserEmailExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).Preload("Roles").First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).Preload("Roles").First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindAll(ctx context.Context) ([]User, error) {
	var users []User

	result := d.db.WithContext(ctx).Preload("Roles").Order("id").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func (d *UserDAO) UpdatePhone(ctx context.Context, id uint, phone string) error {
	result := d.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("phone", phone)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (d *UserDAO) FindRolesByName(ctx context.Context, names []string) ([]Role, error) {
	var roles []Role

	result := d.db.WithContext(ctx).Where("name IN ?", names).Find(&roles)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(roles) != len(names) {
		return nil, ErrRoleNotFound
	}

	return roles, nil
}

// TutorRevocation makes ReplaceRoles undo the tutor status as well.
type TutorRevocation struct {
	ApprovedStatus string
	RevokedStatus  string
}

// ReplaceRoles swaps the user's role set. With a revocation, the tutor data goes
// in the same transaction.
func (d *UserDAO) ReplaceRoles(ctx context.Context, id uint, roles []Role, revocation *TutorRevocation) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{ID: id}).Association("Roles").Replace(roles); err != nil {
			return err
		}
		if revocation == nil {
			return nil
		}

		return dropTutorData(tx, id, revocation.ApprovedStatus, revocation.RevokedStatus)
	})
}

// Delete removes the user with the subject links, tutor requests and role grants.
func (d *UserDAO) Delete(ctx context.Context, id uint) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tutor_id = ?", id).Delete(&TutorSubject{}).Error; err != nil {
			return err
		}
		if err := tx.Where("applicant_id = ?", id).Delete(&TutorRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tutor_id = ?", id).Delete(&WeeklyBlock{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tutor_id = ? AND status NOT IN ?", id, lockedBlockStatuses).Delete(&MonthlyBlock{}).Error; err != nil {
			return err
		}

		result := tx.Select(clause.Associations).Delete(&User{ID: id})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrUserHasSessions
		}

		return err
	}

	return nil
}
