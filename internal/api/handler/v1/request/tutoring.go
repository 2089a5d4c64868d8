package request

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/ingetuto/ingetuto-api/internal/domain"
)

type ReserveRequest struct {
	BlockID   uint   `json:"bloqueId"`
	SubjectID uint   `json:"materiaId"`
	Topic     string `json:"nombreTema"`
}

func (req *ReserveRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.BlockID, validation.Required),
		validation.Field(&req.SubjectID, validation.Required),
		validation.Field(&req.Topic, validation.Required, validation.Length(1, 200)),
	)
}

type LinkRequest struct {
	Link string `json:"linkTutoria"`
}

func (req *LinkRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Link, validation.Required, is.URL),
	)
}

type CancelRequest struct {
	Observations string `json:"observaciones"`
}

func (req *CancelRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Observations, validation.Required, validation.Length(1, 500)),
	)
}

type ReviewSessionRequest struct {
	Held *bool `json:"realizada"`
}

func (req *ReviewSessionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Held, validation.NotNil),
	)
}

// ParseStatuses reads a comma separated status filter such as "PROGRAMADA,RESERVADA".
func ParseStatuses(raw []string) ([]domain.SessionStatus, error) {
	var statuses []domain.SessionStatus
	for _, chunk := range raw {
		for _, s := range strings.Split(chunk, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			status := domain.SessionStatus(s)
			if !status.Valid() {
				return nil, validation.Errors{"estados": errUnknownStatus(s)}
			}
			statuses = append(statuses, status)
		}
	}

	return statuses, nil
}

func errUnknownStatus(s string) error {
	return fmt.Errorf("unknown status %q", s)
}
