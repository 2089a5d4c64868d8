package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository"
)

var (
	ErrUserEmailExists       = repository.ErrUserEmailExists
	ErrEmailDomainNotAllowed = errors.New("only institutional accounts may sign in")
	ErrRoleNotHeld           = errors.New("the user does not hold the requested role")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User, roleNames []string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

type AuthService struct {
	repo          AuthUserRepository
	allowedDomain string
}

func NewAuthService(repo AuthUserRepository, allowedDomain string) *AuthService {
	return &AuthService{
		repo:          repo,
		allowedDomain: strings.ToLower(allowedDomain),
	}
}

// CompleteLogin returns the account behind a verified identity, registering it
// as a student on first login.
func (s *AuthService) CompleteLogin(ctx context.Context, identity domain.Identity) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" || (s.allowedDomain != "" && !strings.HasSuffix(email, s.allowedDomain)) {
		return domain.User{}, ErrEmailDomainNotAllowed
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	user := domain.User{Email: email}
	user.FirstName, user.MiddleName = splitNames(identity.GivenName)
	user.LastName, user.SecondSurname = splitNames(identity.FamilyName)

	created, err := s.repo.Create(ctx, user, []string{domain.RoleStudent})
	if err != nil {
		if errors.Is(err, repository.ErrUserEmailExists) {
			// Lost a race with a concurrent first login.
			return s.repo.FindByEmail(ctx, email)
		}

		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// SwitchRole checks the user may act as role and returns the fresh user.
func (s *AuthService) SwitchRole(ctx context.Context, userID uint, role string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !user.HasRole(role) {
		return domain.User{}, ErrRoleNotHeld
	}

	return user, nil
}

func splitNames(full string) (string, string) {
	parts := strings.SplitN(strings.Join(strings.Fields(full), " "), " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}

	return parts[0], parts[1]
}
