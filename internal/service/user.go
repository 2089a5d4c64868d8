package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository"
)

var (
	ErrUserNotFound    = repository.ErrUserNotFound
	ErrUserHasSessions = repository.ErrUserHasSessions
	ErrInvalidPhone    = errors.New("the phone number must have exactly 10 digits")
	ErrUnknownRole     = errors.New("unknown role")
	ErrCannotGrant     = errors.New("only administrators may grant the ADMIN role")
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	UpdatePhone(ctx context.Context, id uint, phone string) (domain.User, error)
	SetRoles(ctx context.Context, id uint, roleNames []string, revokeTutor bool) (domain.User, error)
	Delete(ctx context.Context, id uint) error
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return users, nil
}

// NormalizePhone keeps the digits of phone and requires exactly ten of them.
func NormalizePhone(phone string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	if len(digits) != 10 {
		return "", ErrInvalidPhone
	}

	return digits, nil
}

func (s *UserService) UpdatePhone(ctx context.Context, actorID, userID uint, phone string) (domain.User, error) {
	if actorID != userID {
		return domain.User{}, ErrPermissionDenied
	}

	digits, err := NormalizePhone(phone)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.repo.UpdatePhone(ctx, userID, digits)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.UpdatePhone -> %w", err)
	}

	return user, nil
}

// UpdateRoles replaces the user's roles. Dropping TUTOR revokes the tutor status
// with its subjects and open availability.
func (s *UserService) UpdateRoles(ctx context.Context, actorRole string, userID uint, roleNames []string) (domain.User, error) {
	seen := make(map[string]bool, len(roleNames))
	roles := make([]string, 0, len(roleNames))
	for _, name := range roleNames {
		name = strings.ToUpper(strings.TrimSpace(name))
		if !domain.IsRoleName(name) {
			return domain.User{}, fmt.Errorf("%w: %q", ErrUnknownRole, name)
		}
		if !seen[name] {
			seen[name] = true
			roles = append(roles, name)
		}
	}

	if seen[domain.RoleAdmin] && actorRole != domain.RoleAdmin {
		return domain.User{}, ErrCannotGrant
	}

	current, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	revokeTutor := current.HasRole(domain.RoleTutor) && !seen[domain.RoleTutor]
	updated, err := s.repo.SetRoles(ctx, userID, roles, revokeTutor)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.SetRoles -> %w", err)
	}

	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
