package request

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/ingetuto/ingetuto-api/internal/domain"
)

var errUnknownRole = errors.New("unknown role")

// OAuthCompleteRequest carries the identity the provider verified.
type OAuthCompleteRequest struct {
	GivenName  string `json:"givenName" form:"givenName"`
	FamilyName string `json:"familyName" form:"familyName"`
	Email      string `json:"email" form:"email"`
}

func (req *OAuthCompleteRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.GivenName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.FamilyName, validation.Length(0, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
	)
}

func (req *OAuthCompleteRequest) Identity() domain.Identity {
	return domain.Identity{
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
		Email:      strings.TrimSpace(req.Email),
	}
}

type SwitchRoleRequest struct {
	TargetRole string `form:"targetRole"`
}

func (req *SwitchRoleRequest) Validate() error {
	req.TargetRole = strings.ToUpper(strings.TrimSpace(req.TargetRole))
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.TargetRole, validation.Required),
	)
	if err != nil {
		return err
	}
	if !domain.IsRoleName(req.TargetRole) {
		return errUnknownRole
	}

	return nil
}

type UpdatePhoneRequest struct {
	PhoneNumber string `form:"phoneNumber"`
	UserID      uint   `form:"userId"`
}

func (req *UpdatePhoneRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PhoneNumber, validation.Required),
		validation.Field(&req.UserID, validation.Required),
	)
}

type UpdateRolesRequest []string

func (req UpdateRolesRequest) Validate() error {
	if len(req) == 0 {
		return errors.New("at least one role is required")
	}

	return nil
}
