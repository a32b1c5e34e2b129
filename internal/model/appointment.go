package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "Pendiente"
	AppointmentStatusCompleted AppointmentStatus = "Completada"
	AppointmentStatusCancelled AppointmentStatus = "Cancelada"
)

type Appointment struct {
	ID          int64             `db:"id_cita" json:"id_cita"`
	PatientID   int64             `db:"id_paciente" json:"id_paciente"`
	DoctorID    int64             `db:"id_doctor" json:"id_doctor"`
	HospitalID  *int64            `db:"id_hospital" json:"id_hospital"`
	ScheduledAt time.Time         `db:"fecha_hora" json:"fecha_hora"`
	Reason      *string           `db:"motivo" json:"motivo"`
	Status      AppointmentStatus `db:"estado" json:"estado"`
}

// AppointmentView is an appointment joined with the names a listing shows.
type AppointmentView struct {
	Appointment
	DoctorName   *string `db:"doctor_nombre" json:"doctor_nombre,omitempty"`
	Specialty    *string `db:"especialidad" json:"especialidad,omitempty"`
	HospitalName *string `db:"hospital_nombre" json:"hospital_nombre"`
	PatientName  *string `db:"paciente_nombre" json:"paciente_nombre,omitempty"`
	PatientDNI   *string `db:"paciente_dni" json:"paciente_dni,omitempty"`
}

// AppointmentDetail backs GET /citas/:id.
type AppointmentDetail struct {
	AppointmentView
	PatientUserID    int64      `db:"paciente_id_usuario" json:"-"`
	DoctorUserID     int64      `db:"doctor_id_usuario" json:"-"`
	PatientBirthDate *time.Time `db:"paciente_fecha_nacimiento" json:"paciente_fecha_nacimiento,omitempty"`
	PatientSex       *string    `db:"paciente_sexo" json:"paciente_sexo,omitempty"`
}

// Agenda is a doctor's full day.
type Agenda struct {
	Appointments []*AppointmentView `json:"agenda"`
	Total        int                `json:"total"`
	Pending      int                `json:"pendientes"`
}

type BookAppointmentRequest struct {
	DoctorID    int64   `json:"id_doctor" validate:"required"`
	HospitalID  *int64  `json:"id_hospital"`
	ScheduledAt string  `json:"fecha_hora" validate:"required"`
	Reason      *string `json:"motivo"`
}
