package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusRetry     OutboxStatus = "retry"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Event types recorded by the API and relayed by the worker.
const (
	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentCancelled = "appointment.cancelled"
	EventEncounterCompleted   = "encounter.completed"
	EventPrescriptionIssued   = "prescription.issued"
	EventExamOrdered          = "exam.ordered"
	EventPatientRegistered    = "patient.registered"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// AppointmentNotice is the payload of appointment events.
type AppointmentNotice struct {
	AppointmentID int64     `json:"id_cita"`
	PatientEmail  string    `json:"email"`
	PatientName   string    `json:"paciente_nombre"`
	DoctorID      int64     `json:"id_doctor"`
	ScheduledAt   time.Time `json:"fecha_hora"`
	Status        string    `json:"estado"`
}
