package model

import "time"

type Patient struct {
	ID        int64      `db:"id_paciente" json:"id_paciente"`
	UserID    int64      `db:"id_usuario" json:"id_usuario"`
	DNI       string     `db:"dni" json:"dni"`
	FirstName string     `db:"nombres" json:"nombres"`
	LastName  string     `db:"apellidos" json:"apellidos"`
	BirthDate *time.Time `db:"fecha_nacimiento" json:"fecha_nacimiento"`
	Sex       *string    `db:"sexo" json:"sexo"`
	Phone     *string    `db:"telefono" json:"telefono"`
}

func (p *Patient) FullName() string {
	return FullName(p.FirstName, p.LastName)
}

// PatientSearchResult is a row of the doctor-side patient search.
type PatientSearchResult struct {
	Patient
	Email             string `db:"email" json:"email"`
	TotalAppointments int    `db:"total_citas" json:"total_citas"`
}

// AppointmentCounts backs the profile counters.
type AppointmentCounts struct {
	Total   int `db:"total" json:"total"`
	Pending int `db:"pendientes" json:"pendientes"`
}

type UpdateProfileRequest struct {
	FirstName string  `json:"nombres" validate:"required"`
	LastName  string  `json:"apellidos" validate:"required"`
	BirthDate *string `json:"fecha_nacimiento"`
	Sex       *string `json:"sexo"`
	Phone     *string `json:"telefono"`
}

// ProfileUpdate is UpdateProfileRequest after date parsing.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	BirthDate *time.Time
	Sex       *string
	Phone     *string
}

// Profile is the response of GET /perfil.
type Profile struct {
	Identity
	Patient *Patient           `json:"paciente,omitempty"`
	Doctor  *Doctor            `json:"doctor,omitempty"`
	Counts  *AppointmentCounts `json:"citas,omitempty"`
}
