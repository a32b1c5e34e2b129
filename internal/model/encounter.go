package model

import "time"

// DefaultEncounterType is used when the doctor leaves the type empty.
const DefaultEncounterType = "Consulta General"

type Encounter struct {
	ID            int64     `db:"id_atencion" json:"id_atencion"`
	AppointmentID int64     `db:"id_cita" json:"id_cita"`
	Type          string    `db:"tipo_atencion" json:"tipo_atencion"`
	CreatedAt     time.Time `db:"fecha" json:"fecha"`
}

type AttendRequest struct {
	AppointmentID int64  `json:"id_cita" validate:"required"`
	Type          string `json:"tipo_atencion"`
	Diagnosis     string `json:"diagnostico" validate:"required"`
	Notes         string `json:"observaciones"`
}

// AttendRecord is what the encounter store writes in one transaction.
type AttendRecord struct {
	AppointmentID int64
	DoctorID      int64
	Type          string
	Diagnosis     string
	// HistoryNote is appended to the patient's clinical history when set.
	HistoryNote string
}

type AttendResult struct {
	EncounterID   int64  `json:"id_atencion"`
	AppointmentID int64  `json:"id_cita"`
	PatientID     int64  `json:"id_paciente"`
	PatientName   string `json:"paciente_nombre"`
}
