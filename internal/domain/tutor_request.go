package domain

type RequestStatus string

const (
	RequestInReview RequestStatus = "EN_REVISION"
	RequestApproved RequestStatus = "APROBADO"
	RequestDenied   RequestStatus = "DENEGADO"
	RequestRevoked  RequestStatus = "REVOCADO"
)

// TutorRequest is a student's application to tutor a subject.
type TutorRequest struct {
	ID             uint          `json:"idSolicitud"`
	Applicant      User          `json:"aspirante"`
	Subject        Subject       `json:"materia"`
	SubmittedOn    Date          `json:"fechaSolicitud"`
	Status         RequestStatus `json:"estado"`
	AcademicRecord string        `json:"historiaAcademica"`
	SupportFile    string        `json:"archivoSoporte"`
	Observation    string        `json:"observacion,omitempty"`
}
