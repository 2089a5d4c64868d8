package request

import (
	"errors"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/ingetuto/ingetuto-api/internal/domain"
)

// At least one digit, so plain words are not mistaken for codes.
var subjectCodeExp = regexp2.MustCompile(`^(?=.*\d)[A-Z0-9-]{3,20}$`, regexp2.None)

var errInvalidSubjectCode = errors.New("the code must be 3 to 20 characters of A-Z, 0-9 or '-' and contain a digit")

func ValidSubjectCode(code string) bool {
	ok, err := subjectCodeExp.MatchString(strings.ToUpper(strings.TrimSpace(code)))
	return err == nil && ok
}

type SubjectRequest struct {
	Name string `json:"nombre_materia"`
	Code string `json:"codigoMateria"`
}

func (req *SubjectRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 120)),
		validation.Field(&req.Code, validation.Required),
	)
	if err != nil {
		return err
	}

	if !ValidSubjectCode(req.Code) {
		return errInvalidSubjectCode
	}

	return nil
}

func (req *SubjectRequest) Subject() domain.Subject {
	return domain.Subject{Name: req.Name, Code: req.Code}
}
