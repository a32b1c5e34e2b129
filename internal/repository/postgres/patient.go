package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

// likeEscaper makes the search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const patientColumns = `p.id_paciente, p.id_usuario, p.dni, p.nombres, p.apellidos,
	p.fecha_nacimiento, p.sexo, p.telefono`

func (r *patientRepository) GetByUserID(ctx context.Context, userID int64) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM pacientes p WHERE p.id_usuario = $1`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", translateError(err))
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, userID int64, upd *model.ProfileUpdate) (*model.Patient, error) {
	query := `
		UPDATE pacientes p
		SET nombres = $1, apellidos = $2, fecha_nacimiento = $3, sexo = $4, telefono = $5
		WHERE p.id_usuario = $6
		RETURNING ` + patientColumns

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query,
		upd.FirstName,
		upd.LastName,
		upd.BirthDate,
		upd.Sex,
		upd.Phone,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", translateError(err))
	}
	return &patient, nil
}

// Search matches term against DNI and names. An empty term lists everyone.
func (r *patientRepository) Search(ctx context.Context, term string, limit int) ([]*model.PatientSearchResult, error) {
	query := `
		SELECT ` + patientColumns + `, u.email,
			(SELECT COUNT(*) FROM citas c WHERE c.id_paciente = p.id_paciente) AS total_citas
		FROM pacientes p
		JOIN usuarios u ON u.id_usuario = p.id_usuario
		WHERE p.dni ILIKE $1 ESCAPE '\' OR p.nombres ILIKE $1 ESCAPE '\' OR p.apellidos ILIKE $1 ESCAPE '\'
		ORDER BY p.nombres, p.apellidos
		LIMIT $2
	`

	results := []*model.PatientSearchResult{}
	pattern := "%" + likeEscaper.Replace(term) + "%"
	if err := r.db.SelectContext(ctx, &results, query, pattern, limit); err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	return results, nil
}

func (r *patientRepository) AppointmentCounts(ctx context.Context, patientID int64) (*model.AppointmentCounts, error) {
	query := `
		SELECT COUNT(*) AS total,
			COUNT(*) FILTER (WHERE estado = 'Pendiente') AS pendientes
		FROM citas
		WHERE id_paciente = $1
	`

	var counts model.AppointmentCounts
	if err := r.db.GetContext(ctx, &counts, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	return &counts, nil
}
