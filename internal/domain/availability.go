package domain

type Modality string

const (
	ModalityVirtual  Modality = "VIRTUAL"
	ModalityInPerson Modality = "PRESENCIAL"
)

func (m Modality) Valid() bool {
	return m == ModalityVirtual || m == ModalityInPerson
}

type BlockStatus string

const (
	BlockAvailable BlockStatus = "DISPONIBLE"
	BlockReserved  BlockStatus = "RESERVADO"
	BlockOccupied  BlockStatus = "OCUPADO"
	BlockCancelled BlockStatus = "CANCELADO"
)

// Locked blocks back a session and cannot be removed or edited by the tutor.
func (s BlockStatus) Locked() bool {
	return s == BlockReserved || s == BlockOccupied
}

type BlockOrigin string

const (
	OriginTemplate BlockOrigin = "PLANTILLA"
	OriginManual   BlockOrigin = "MANUAL"
)

type WeeklyBlock struct {
	ID       uint      `json:"idDisponibilidadSemanal,omitempty"`
	TutorID  uint      `json:"-"`
	Day      DayOfWeek `json:"diaSemana"`
	Start    Clock     `json:"horaInicio"`
	End      Clock     `json:"horaFin"`
	Modality Modality  `json:"modalidad"`
}

type MonthlyBlock struct {
	ID        uint        `json:"idDisponibilidadMensual"`
	TutorID   uint        `json:"idTutor"`
	TutorName string      `json:"nombreTutor"`
	Date      Date        `json:"fecha"`
	Start     Clock       `json:"horaInicio"`
	End       Clock       `json:"horaFin"`
	Modality  Modality    `json:"modalidad"`
	Status    BlockStatus `json:"estado"`
	Origin    BlockOrigin `json:"-"`
}

type GenerationResult struct {
	Success   bool   `json:"exito"`
	Message   string `json:"mensaje"`
	Generated int    `json:"bloquesGenerados"`
	Deadline  Date   `json:"fechaLimiteRegistro"`
}

type BlockRef struct {
	ID    uint  `json:"idBloque"`
	Date  Date  `json:"fecha"`
	Start Clock `json:"horaInicio"`
	End   Clock `json:"horaFin"`
}

type MonthValidation struct {
	Valid                 bool       `json:"valido"`
	Errors                []string   `json:"errores"`
	Warnings              []string   `json:"advertencias"`
	BlocksWithoutModality []BlockRef `json:"bloquesSinModalidad"`
}
