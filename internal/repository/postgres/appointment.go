package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

const appointmentColumns = `c.id_cita, c.id_paciente, c.id_doctor, c.id_hospital,
	c.fecha_hora, c.motivo, c.estado`

// CreatePending relies on the partial unique index citas_doctor_horario_pendiente:
// a clash makes the insert a no-op and RETURNING yields no row.
func (r *appointmentRepository) CreatePending(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO citas (id_paciente, id_doctor, id_hospital, fecha_hora, motivo, estado)
		VALUES ($1, $2, $3, $4, $5, 'Pendiente')
		ON CONFLICT (id_doctor, fecha_hora) WHERE estado = 'Pendiente' DO NOTHING
		RETURNING id_cita, estado
	`

	row := r.db.QueryRowxContext(ctx, query,
		appt.PatientID,
		appt.DoctorID,
		appt.HospitalID,
		appt.ScheduledAt,
		appt.Reason,
	)
	err := translateError(row.Scan(&appt.ID, &appt.Status))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return repository.ErrSlotTaken
	default:
		return fmt.Errorf("failed to create appointment: %w", err)
	}
}

func (r *appointmentRepository) GetForPatientUser(ctx context.Context, id, userID int64) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM citas c
		JOIN pacientes p ON p.id_paciente = c.id_paciente
		WHERE c.id_cita = $1 AND p.id_usuario = $2
	`

	var appt model.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id, userID); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", translateError(err))
	}
	return &appt, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE citas SET estado = $1 WHERE id_cita = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) GetDetail(ctx context.Context, id int64) (*model.AppointmentDetail, error) {
	query := `
		SELECT ` + appointmentColumns + `,
			p.nombres || ' ' || p.apellidos AS paciente_nombre,
			p.dni AS paciente_dni,
			p.fecha_nacimiento AS paciente_fecha_nacimiento,
			p.sexo AS paciente_sexo,
			p.id_usuario AS paciente_id_usuario,
			d.nombres || ' ' || d.apellidos AS doctor_nombre,
			d.id_usuario AS doctor_id_usuario,
			e.nombre AS especialidad,
			h.nombre AS hospital_nombre
		FROM citas c
		JOIN pacientes p ON p.id_paciente = c.id_paciente
		JOIN doctores d ON d.id_doctor = c.id_doctor
		LEFT JOIN especialidades e ON e.id_especialidad = d.id_especialidad
		LEFT JOIN hospitales h ON h.id_hospital = c.id_hospital
		WHERE c.id_cita = $1
	`

	var detail model.AppointmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment detail: %w", translateError(err))
	}
	return &detail, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID int64, limit int) ([]*model.AppointmentView, error) {
	query := `
		SELECT ` + appointmentColumns + `,
			d.nombres || ' ' || d.apellidos AS doctor_nombre,
			e.nombre AS especialidad,
			h.nombre AS hospital_nombre
		FROM citas c
		LEFT JOIN doctores d ON d.id_doctor = c.id_doctor
		LEFT JOIN especialidades e ON e.id_especialidad = d.id_especialidad
		LEFT JOIN hospitales h ON h.id_hospital = c.id_hospital
		WHERE c.id_paciente = $1
		ORDER BY c.fecha_hora DESC
		LIMIT $2
	`

	appts := []*model.AppointmentView{}
	if err := r.db.SelectContext(ctx, &appts, query, patientID, limit); err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) ListForDoctorToday(ctx context.Context, doctorID int64, includeClosed bool) ([]*model.AppointmentView, error) {
	query := `
		SELECT ` + appointmentColumns + `,
			p.nombres || ' ' || p.apellidos AS paciente_nombre,
			p.dni AS paciente_dni,
			e.nombre AS especialidad,
			h.nombre AS hospital_nombre
		FROM citas c
		JOIN pacientes p ON p.id_paciente = c.id_paciente
		JOIN doctores d ON d.id_doctor = c.id_doctor
		LEFT JOIN especialidades e ON e.id_especialidad = d.id_especialidad
		LEFT JOIN hospitales h ON h.id_hospital = c.id_hospital
		WHERE c.id_doctor = $1
			AND DATE(c.fecha_hora) = CURRENT_DATE
			AND ($2 OR c.estado NOT IN ('Cancelada', 'Completada'))
		ORDER BY c.fecha_hora ASC
	`

	appts := []*model.AppointmentView{}
	if err := r.db.SelectContext(ctx, &appts, query, doctorID, includeClosed); err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) ListRecent(ctx context.Context, limit int) ([]*model.AppointmentView, error) {
	query := `
		SELECT ` + appointmentColumns + `,
			p.nombres || ' ' || p.apellidos AS paciente_nombre,
			d.nombres || ' ' || d.apellidos AS doctor_nombre
		FROM citas c
		JOIN pacientes p ON p.id_paciente = c.id_paciente
		JOIN doctores d ON d.id_doctor = c.id_doctor
		ORDER BY c.fecha_hora DESC
		LIMIT $1
	`

	appts := []*model.AppointmentView{}
	if err := r.db.SelectContext(ctx, &appts, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent appointments: %w", err)
	}
	return appts, nil
}
