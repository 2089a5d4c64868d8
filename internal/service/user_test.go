package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "3001234567", want: "3001234567"},
		{in: "(300) 123-4567", want: "3001234567"},
		{in: "300 123 456", wantErr: true},
		{in: "", wantErr: true},
		{in: "+57 300 123 4567", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizePhone(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserService_UpdatePhone(t *testing.T) {
	repo := newFakeUserRepo(domain.User{ID: 1}, domain.User{ID: 2})
	svc := NewUserService(repo)

	user, err := svc.UpdatePhone(context.Background(), 1, 1, "300-123-4567")
	require.NoError(t, err)
	assert.Equal(t, "3001234567", user.Phone)

	_, err = svc.UpdatePhone(context.Background(), 1, 2, "3001234567")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUserService_UpdateRoles(t *testing.T) {
	tutor := domain.User{
		ID:    3,
		Roles: []domain.Role{{Name: domain.RoleStudent}, {Name: domain.RoleTutor}},
	}

	t.Run("wellbeing staff cannot grant admin", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(tutor))

		_, err := svc.UpdateRoles(context.Background(), domain.RoleWellbeing, 3, []string{domain.RoleAdmin})

		assert.ErrorIs(t, err, ErrCannotGrant)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(tutor))

		_, err := svc.UpdateRoles(context.Background(), domain.RoleAdmin, 3, []string{"JEFE"})

		assert.ErrorIs(t, err, ErrUnknownRole)
	})

	t.Run("dropping tutor revokes it", func(t *testing.T) {
		repo := newFakeUserRepo(tutor)
		svc := NewUserService(repo)

		user, err := svc.UpdateRoles(context.Background(), domain.RoleAdmin, 3,
			[]string{"estudiante", domain.RoleStudent, domain.RoleWellbeing})
		require.NoError(t, err)

		assert.Equal(t, []string{domain.RoleStudent, domain.RoleWellbeing}, user.RoleNames())
		assert.Equal(t, []uint{3}, repo.revokedTutors)
	})

	t.Run("failed role change keeps tutor data", func(t *testing.T) {
		repo := newFakeUserRepo(tutor)
		repo.setRolesErr = repository.ErrRoleNotFound
		svc := NewUserService(repo)

		_, err := svc.UpdateRoles(context.Background(), domain.RoleAdmin, 3, []string{domain.RoleStudent})
		assert.ErrorIs(t, err, repository.ErrRoleNotFound)

		assert.Empty(t, repo.revokedTutors)
		assert.True(t, repo.users[3].HasRole(domain.RoleTutor))
	})

	t.Run("keeping tutor does not revoke", func(t *testing.T) {
		repo := newFakeUserRepo(tutor)
		svc := NewUserService(repo)

		_, err := svc.UpdateRoles(context.Background(), domain.RoleWellbeing, 3, []string{domain.RoleTutor})
		require.NoError(t, err)

		assert.Empty(t, repo.revokedTutors)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	repo := newFakeUserRepo(domain.User{ID: 1})
	svc := NewUserService(repo)

	require.NoError(t, svc.DeleteUser(context.Background(), 1))
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), 1), ErrUserNotFound)
}
