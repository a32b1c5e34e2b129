package model

type Stats struct {
	TotalUsers                 int `db:"total_usuarios" json:"total_usuarios"`
	TotalPatients              int `db:"total_pacientes" json:"total_pacientes"`
	TotalDoctors               int `db:"total_doctores" json:"total_doctores"`
	PendingAppointments        int `db:"citas_pendientes" json:"citas_pendientes"`
	CompletedAppointmentsToday int `db:"citas_hoy" json:"citas_hoy"`
	TotalHospitals             int `db:"total_hospitales" json:"total_hospitales"`
	PrescriptionsToday         int `db:"recetas_hoy" json:"recetas_hoy"`
}

// Dashboard is the admin statistics payload.
type Dashboard struct {
	Stats              *Stats             `json:"estadisticas"`
	RecentUsers        []*UserSummary     `json:"ultimosUsuarios"`
	RecentAppointments []*AppointmentView `json:"citasRecientes"`
}
