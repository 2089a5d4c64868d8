package domain

type Subject struct {
	ID   uint   `json:"id_materia"`
	Name string `json:"nombre_materia"`
	Code string `json:"codigoMateria"`
}

type CodeCheck struct {
	Exists      bool   `json:"existe"`
	Message     string `json:"mensaje"`
	SubjectName string `json:"nombreMateria,omitempty"`
}

// TutorSubject links a tutor to a subject they were approved for.
type TutorSubject struct {
	ID          uint   `json:"idTutorXMateria"`
	TutorID     uint   `json:"-"`
	SubjectID   uint   `json:"idMateria"`
	SubjectName string `json:"nombreMateria"`
	SubjectCode string `json:"codigoMateria"`
}
