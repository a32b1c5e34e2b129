package model

import "time"

type ExamStatus string

const (
	ExamStatusPending    ExamStatus = "Pendiente"
	ExamStatusInProgress ExamStatus = "En Proceso"
	ExamStatusCompleted  ExamStatus = "Completado"
)

// ExamOrderNotePrefix prefixes the observations stored as the first result.
const ExamOrderNotePrefix = "Orden creada por doctor: "

type Exam struct {
	ID          int64      `db:"id_examen" json:"id_examen"`
	PatientID   int64      `db:"id_paciente" json:"id_paciente"`
	Type        string     `db:"tipo_examen" json:"tipo_examen"`
	Status      ExamStatus `db:"estado" json:"estado"`
	RequestedAt time.Time  `db:"fecha_solicitud" json:"fecha_solicitud"`
}

// ExamView adds the most recent result text.
type ExamView struct {
	Exam
	LatestResult *string `db:"ultimo_resultado" json:"ultimo_resultado"`
}

type OrderExamRequest struct {
	PatientID    int64  `json:"id_paciente" validate:"required"`
	Type         string `json:"tipo_examen" validate:"required"`
	Observations string `json:"observaciones"`
}
