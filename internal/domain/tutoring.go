package domain

import "time"

type SessionStatus string

const (
	SessionReserved            SessionStatus = "RESERVADA"
	SessionScheduled           SessionStatus = "PROGRAMADA"
	SessionPendingConfirmation SessionStatus = "PENDIENTE_CONFIRMACION"
	SessionHeld                SessionStatus = "REALIZADA"
	SessionUnconfirmed         SessionStatus = "SIN_CONFIRMAR"
	SessionCompleted           SessionStatus = "COMPLETADA"
	SessionNotHeld             SessionStatus = "NO_EJECUTADA"
	SessionCancelled           SessionStatus = "CANCELADA"
)

func SessionStatuses() []SessionStatus {
	return []SessionStatus{
		SessionReserved, SessionScheduled, SessionPendingConfirmation, SessionHeld,
		SessionUnconfirmed, SessionCompleted, SessionNotHeld, SessionCancelled,
	}
}

func (s SessionStatus) Valid() bool {
	for _, st := range SessionStatuses() {
		if st == s {
			return true
		}
	}

	return false
}

func (s SessionStatus) Cancellable() bool {
	return s == SessionReserved || s == SessionScheduled
}

func (s SessionStatus) Confirmable() bool {
	return s == SessionScheduled || s == SessionPendingConfirmation
}

type TutoringSession struct {
	ID                 uint          `json:"idTutoria"`
	StudentID          uint          `json:"idEstudiante"`
	StudentName        string        `json:"nombreEstudiante"`
	StudentPhone       string        `json:"telefonoEstudiante,omitempty"`
	TutorID            uint          `json:"idTutor"`
	TutorName          string        `json:"nombreTutor"`
	TutorPhone         string        `json:"telefonoTutor,omitempty"`
	SubjectID          uint          `json:"idMateria"`
	SubjectName        string        `json:"nombreMateria"`
	BlockID            uint          `json:"idBloque"`
	Topic              string        `json:"nombreTema"`
	Date               Date          `json:"fechaTutoria"`
	Start              Clock         `json:"horaInicio"`
	End                Clock         `json:"horaFin"`
	Modality           Modality      `json:"modalidad"`
	Link               string        `json:"linkTutoria,omitempty"`
	Status             SessionStatus `json:"estado"`
	SupportFile        string        `json:"archivoSoporte,omitempty"`
	Observations       string        `json:"observaciones,omitempty"`
	RequestedAt        time.Time     `json:"fechaSolicitud"`
	StudentConfirmed   bool          `json:"confirmacionEstudiante"`
	TutorConfirmed     bool          `json:"confirmacionTutor"`
	StudentConfirmedAt *time.Time    `json:"fechaConfirmacionEstudiante,omitempty"`
	TutorConfirmedAt   *time.Time    `json:"fechaConfirmacionTutor,omitempty"`
}

func (s TutoringSession) IsParty(userID uint) bool {
	return s.StudentID == userID || s.TutorID == userID
}

type Cancellation struct {
	ID        uint   `json:"idCancelacion"`
	SessionID uint   `json:"idTutoria"`
	UserID    uint   `json:"idAccionante"`
	Reason    string `json:"motivoCancelacion"`
}

// SessionEvent is pushed to the parties of a session whenever its status changes.
type SessionEvent struct {
	Type      string        `json:"type"`
	SessionID uint          `json:"idTutoria"`
	Status    SessionStatus `json:"estado"`
	StudentID uint          `json:"-"`
	TutorID   uint          `json:"-"`
}
