package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

const doctorSelect = `
	SELECT d.id_doctor, d.id_usuario, d.dni, d.nombres, d.apellidos,
		d.id_especialidad, e.nombre AS especialidad, d.telefono
	FROM doctores d
	LEFT JOIN especialidades e ON e.id_especialidad = d.id_especialidad
`

func (r *doctorRepository) GetByUserID(ctx context.Context, userID int64) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, doctorSelect+` WHERE d.id_usuario = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", translateError(err))
	}
	return &doctor, nil
}

// Update changes names and phone only; specialty is managed by admins.
func (r *doctorRepository) Update(ctx context.Context, userID int64, upd *model.ProfileUpdate) (*model.Doctor, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE doctores SET nombres = $1, apellidos = $2, telefono = $3
		WHERE id_usuario = $4
	`, upd.FirstName, upd.LastName, upd.Phone, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByUserID(ctx, userID)
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, doctorSelect+` ORDER BY d.nombres, d.apellidos`); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) TodayCounts(ctx context.Context, doctorID int64) (*model.AppointmentCounts, error) {
	query := `
		SELECT COUNT(*) AS total,
			COUNT(*) FILTER (WHERE estado = 'Pendiente') AS pendientes
		FROM citas
		WHERE id_doctor = $1 AND DATE(fecha_hora) = CURRENT_DATE
	`

	var counts model.AppointmentCounts
	if err := r.db.GetContext(ctx, &counts, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to count doctor appointments: %w", err)
	}
	return &counts, nil
}
