package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(base BaseRepository) repository.PrescriptionRepository {
	return &prescriptionRepository{base}
}

func (r *prescriptionRepository) Create(ctx context.Context, doctorID, encounterID int64, items []*model.PrescriptionItem) (*model.Prescription, error) {
	rx := &model.Prescription{EncounterID: encounterID, Items: items}

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var owned bool
		if err := tx.GetContext(ctx, &owned, `
			SELECT EXISTS (
				SELECT 1 FROM atenciones a
				JOIN citas c ON c.id_cita = a.id_cita
				WHERE a.id_atencion = $1 AND c.id_doctor = $2
			)
		`, encounterID, doctorID); err != nil {
			return err
		}
		if !owned {
			return repository.ErrNotOwned
		}

		if err := tx.QueryRowxContext(ctx,
			`INSERT INTO recetas (id_atencion) VALUES ($1) RETURNING id_receta, fecha`,
			encounterID,
		).Scan(&rx.ID, &rx.IssuedAt); err != nil {
			return err
		}

		for _, item := range items {
			item.PrescriptionID = rx.ID
			err := tx.QueryRowxContext(ctx, `
				INSERT INTO receta_detalles (id_receta, id_medicamento, indicaciones)
				VALUES ($1, $2, $3)
				RETURNING id_detalle
			`, rx.ID, item.MedicationID, item.Instructions).Scan(&item.ID)
			if err != nil {
				return translateError(err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotOwned) || errors.Is(err, repository.ErrMissingReference) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}
	return rx, nil
}

// ListByPatient returns the newest prescriptions first, each with its items
// in insertion order.
func (r *prescriptionRepository) ListByPatient(ctx context.Context, patientID int64, limit int) ([]*model.PrescriptionView, error) {
	query := `
		SELECT r.id_receta, r.id_atencion, r.fecha,
			a.tipo_atencion,
			c.fecha_hora,
			d.nombres || ' ' || d.apellidos AS doctor_nombre,
			e.nombre AS especialidad
		FROM recetas r
		JOIN atenciones a ON a.id_atencion = r.id_atencion
		JOIN citas c ON c.id_cita = a.id_cita
		JOIN doctores d ON d.id_doctor = c.id_doctor
		LEFT JOIN especialidades e ON e.id_especialidad = d.id_especialidad
		WHERE c.id_paciente = $1
		ORDER BY r.fecha DESC
		LIMIT $2
	`

	views := []*model.PrescriptionView{}
	if err := r.db.SelectContext(ctx, &views, query, patientID, limit); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	if len(views) == 0 {
		return views, nil
	}

	ids := make([]int64, len(views))
	byID := make(map[int64]*model.PrescriptionView, len(views))
	for i, v := range views {
		ids[i] = v.ID
		v.Items = []*model.PrescriptionItem{}
		byID[v.ID] = v
	}

	var items []*model.PrescriptionItem
	if err := r.db.SelectContext(ctx, &items, `
		SELECT rd.id_detalle, rd.id_receta, rd.id_medicamento, rd.indicaciones,
			m.nombre, m.presentacion
		FROM receta_detalles rd
		JOIN medicamentos m ON m.id_medicamento = rd.id_medicamento
		WHERE rd.id_receta = ANY($1)
		ORDER BY rd.id_detalle
	`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list prescription items: %w", err)
	}
	for _, item := range items {
		if v, ok := byID[item.PrescriptionID]; ok {
			v.Items = append(v.Items, item)
		}
	}
	return views, nil
}
