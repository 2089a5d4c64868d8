package request

import (
	"errors"
	"mime/multipart"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/ingetuto/ingetuto-api/internal/domain"
)

const maxUploadSize = 10 << 20

var (
	errFileTooLarge = errors.New("documents must not exceed 10 MB")
	errDocumentType = errors.New("documents must be PDF or image files")
)

var allowedDocumentExts = []interface{}{".pdf", ".png", ".jpg", ".jpeg"}

type SubmitTutorRequest struct {
	SubjectID      uint                  `form:"idMateria"`
	AcademicRecord *multipart.FileHeader `form:"historiaAcademica"`
	SupportFile    *multipart.FileHeader `form:"archivoSoporte"`
}

func documentRule(value interface{}) error {
	fh, _ := value.(*multipart.FileHeader)
	if fh == nil {
		return nil
	}

	name := strings.ToLower(fh.Filename)
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = name[i:]
	}

	if ext == "" {
		return errDocumentType
	}

	return validation.Validate(ext, validation.In(allowedDocumentExts...).Error(errDocumentType.Error()))
}

func sizeRule(value interface{}) error {
	fh, _ := value.(*multipart.FileHeader)
	if fh != nil && fh.Size > maxUploadSize {
		return errFileTooLarge
	}

	return nil
}

func (req *SubmitTutorRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.SubjectID, validation.Required),
		validation.Field(&req.AcademicRecord, validation.NotNil, validation.By(documentRule), validation.By(sizeRule)),
		validation.Field(&req.SupportFile, validation.NotNil, validation.By(documentRule), validation.By(sizeRule)),
	)
}

type ReviewTutorRequest struct {
	Status      domain.RequestStatus `json:"estado"`
	Observation string               `json:"observacion"`
}

func (req *ReviewTutorRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In(domain.RequestApproved, domain.RequestDenied)),
		validation.Field(&req.Observation, validation.Length(0, 500)),
	)
}
