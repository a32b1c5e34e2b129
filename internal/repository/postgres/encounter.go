package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type encounterRepository struct {
	BaseRepository
}

func NewEncounterRepository(base BaseRepository) repository.EncounterRepository {
	return &encounterRepository{base}
}

type attendTarget struct {
	PatientID   int64                   `db:"id_paciente"`
	Status      model.AppointmentStatus `db:"estado"`
	PatientName string                  `db:"paciente_nombre"`
}

func (r *encounterRepository) Attend(ctx context.Context, rec *model.AttendRecord) (*model.AttendResult, error) {
	result := &model.AttendResult{AppointmentID: rec.AppointmentID}

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var target attendTarget
		err := tx.GetContext(ctx, &target, `
			SELECT c.id_paciente, c.estado, p.nombres || ' ' || p.apellidos AS paciente_nombre
			FROM citas c
			JOIN pacientes p ON p.id_paciente = c.id_paciente
			WHERE c.id_cita = $1 AND c.id_doctor = $2
			FOR UPDATE OF c
		`, rec.AppointmentID, rec.DoctorID)
		if err != nil {
			if errors.Is(translateError(err), repository.ErrNotFound) {
				return repository.ErrNotOwned
			}
			return err
		}
		if target.Status != model.AppointmentStatusPending {
			return repository.ErrNotOwned
		}
		result.PatientID = target.PatientID
		result.PatientName = target.PatientName

		if _, err := tx.ExecContext(ctx,
			`UPDATE citas SET estado = $1 WHERE id_cita = $2`,
			model.AppointmentStatusCompleted, rec.AppointmentID,
		); err != nil {
			return err
		}

		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO atenciones (id_cita, tipo_atencion)
			VALUES ($1, $2)
			RETURNING id_atencion
		`, rec.AppointmentID, rec.Type).Scan(&result.EncounterID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO diagnosticos (id_atencion, descripcion) VALUES ($1, $2)`,
			result.EncounterID, rec.Diagnosis,
		); err != nil {
			return err
		}

		if rec.HistoryNote == "" {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO historias_clinicas (id_paciente, resumen, actualizado_en)
			VALUES ($1, $2, NOW())
			ON CONFLICT (id_paciente) DO UPDATE SET
				resumen = CASE
					WHEN historias_clinicas.resumen = '' THEN EXCLUDED.resumen
					ELSE historias_clinicas.resumen || E'\n' || EXCLUDED.resumen
				END,
				actualizado_en = NOW()
		`, target.PatientID, rec.HistoryNote)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotOwned) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to attend appointment: %w", err)
	}
	return result, nil
}
