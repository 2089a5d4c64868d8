package domain

import (
	"strings"
	"time"
)

const (
	RoleAdmin     = "ADMIN"
	RoleWellbeing = "FUNCIONARIO_BIENESTAR"
	RoleStudent   = "ESTUDIANTE"
	RoleTutor     = "TUTOR"
)

func RoleNames() []string {
	return []string{RoleStudent, RoleTutor, RoleWellbeing, RoleAdmin}
}

func IsRoleName(name string) bool {
	for _, r := range RoleNames() {
		if r == name {
			return true
		}
	}

	return false
}

type Role struct {
	ID          uint   `json:"idRol"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

type User struct {
	ID            uint      `json:"idUsuario"`
	FirstName     string    `json:"primerNombre"`
	MiddleName    string    `json:"segundoNombre,omitempty"`
	LastName      string    `json:"primerApellido"`
	SecondSurname string    `json:"segundoApellido,omitempty"`
	Email         string    `json:"correoUsuario"`
	Phone         string    `json:"telefonoUsuario,omitempty"`
	Roles         []Role    `json:"roles"`
	CreatedAt     time.Time `json:"fechaCreacion"`
}

func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}

	return false
}

func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}

	return names
}

// DefaultRole is the role a fresh login starts with.
func (u User) DefaultRole() string {
	if u.HasRole(RoleStudent) {
		return RoleStudent
	}
	if len(u.Roles) > 0 {
		return u.Roles[0].Name
	}

	return ""
}

func (u User) FullName() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{u.FirstName, u.MiddleName, u.LastName, u.SecondSurname} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, " ")
}

// Identity is what the identity provider vouches for after a login.
type Identity struct {
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
	Email      string `json:"email"`
}
