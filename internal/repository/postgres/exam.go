package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type examRepository struct {
	BaseRepository
}

func NewExamRepository(base BaseRepository) repository.ExamRepository {
	return &examRepository{base}
}

func (r *examRepository) CreateOrder(ctx context.Context, exam *model.Exam, note string) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if exam.Status == "" {
			exam.Status = model.ExamStatusPending
		}
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO examenes (id_paciente, tipo_examen, estado)
			VALUES ($1, $2, $3)
			RETURNING id_examen, fecha_solicitud
		`, exam.PatientID, exam.Type, exam.Status).Scan(&exam.ID, &exam.RequestedAt)
		if err != nil {
			return translateError(err)
		}

		if note == "" {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO examenes_resultados (id_examen, resultado) VALUES ($1, $2)`,
			exam.ID, note,
		)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return err
		}
		return fmt.Errorf("failed to create exam order: %w", err)
	}
	return nil
}

func (r *examRepository) ListByPatient(ctx context.Context, patientID int64, limit int) ([]*model.ExamView, error) {
	query := `
		SELECT e.id_examen, e.id_paciente, e.tipo_examen, e.estado, e.fecha_solicitud,
			(SELECT er.resultado FROM examenes_resultados er
			 WHERE er.id_examen = e.id_examen
			 ORDER BY er.fecha DESC, er.id_resultado DESC LIMIT 1) AS ultimo_resultado
		FROM examenes e
		WHERE e.id_paciente = $1
		ORDER BY CASE
			WHEN e.estado = 'Pendiente' THEN 1
			WHEN e.estado = 'En Proceso' THEN 2
			ELSE 3
		END, e.id_examen DESC
		LIMIT $2
	`

	exams := []*model.ExamView{}
	if err := r.db.SelectContext(ctx, &exams, query, patientID, limit); err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, nil
}
