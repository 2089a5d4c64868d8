package repository

import (
	"context"
	"fmt"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
	ErrUserHasSessions = dao.ErrUserHasSessions
	ErrRoleNotFound    = dao.ErrRoleNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	FindAll(ctx context.Context) ([]dao.User, error)
	UpdatePhone(ctx context.Context, id uint, phone string) error
	FindRolesByName(ctx context.Context, names []string) ([]dao.Role, error)
	ReplaceRoles(ctx context.Context, id uint, roles []dao.Role, revocation *dao.TutorRevocation) error
	Delete(ctx context.Context, id uint) error
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

// Create stores the user together with the named roles.
func (r *UserRepository) Create(ctx context.Context, user domain.User, roleNames []string) (domain.User, error) {
	var roles []dao.Role
	if len(roleNames) > 0 {
		found, err := r.dao.FindRolesByName(ctx, roleNames)
		if err != nil {
			return domain.User{}, fmt.Errorf("r.dao.FindRolesByName -> %w", err)
		}
		roles = found
	}

	created, err := r.dao.Insert(ctx, dao.User{
		FirstName:     user.FirstName,
		MiddleName:    user.MiddleName,
		LastName:      user.LastName,
		SecondSurname: user.SecondSurname,
		Email:         user.Email,
		Phone:         user.Phone,
		Roles:         roles,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return userDaoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return userDaoToDomain(found), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return userDaoToDomain(found), nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	users := make([]domain.User, 0, len(found))
	for _, u := range found {
		users = append(users, userDaoToDomain(u))
	}

	return users, nil
}

func (r *UserRepository) UpdatePhone(ctx context.Context, id uint, phone string) (domain.User, error) {
	if err := r.dao.UpdatePhone(ctx, id, phone); err != nil {
		return domain.User{}, fmt.Errorf("r.dao.UpdatePhone -> %w", err)
	}

	return r.FindByID(ctx, id)
}

// SetRoles replaces the roles. With revokeTutor the subject links, the weekly
// template and open blocks are dropped in the same transaction.
func (r *UserRepository) SetRoles(ctx context.Context, id uint, roleNames []string, revokeTutor bool) (domain.User, error) {
	var roles []dao.Role
	if len(roleNames) > 0 {
		found, err := r.dao.FindRolesByName(ctx, roleNames)
		if err != nil {
			return domain.User{}, fmt.Errorf("r.dao.FindRolesByName -> %w", err)
		}
		roles = found
	}

	var revocation *dao.TutorRevocation
	if revokeTutor {
		revocation = &dao.TutorRevocation{
			ApprovedStatus: string(domain.RequestApproved),
			RevokedStatus:  string(domain.RequestRevoked),
		}
	}

	if err := r.dao.ReplaceRoles(ctx, id, roles, revocation); err != nil {
		return domain.User{}, fmt.Errorf("r.dao.ReplaceRoles -> %w", err)
	}

	return r.FindByID(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func userDaoToDomain(u dao.User) domain.User {
	roles := make([]domain.Role, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, domain.Role{
			ID:          role.ID,
			Name:        role.Name,
			Description: role.Description,
		})
	}

	return domain.User{
		ID:            u.ID,
		FirstName:     u.FirstName,
		MiddleName:    u.MiddleName,
		LastName:      u.LastName,
		SecondSurname: u.SecondSurname,
		Email:         u.Email,
		Phone:         u.Phone,
		Roles:         roles,
		CreatedAt:     u.CreatedAt,
	}
}
