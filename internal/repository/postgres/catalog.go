package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type catalogRepository struct {
	BaseRepository
}

func NewCatalogRepository(base BaseRepository) repository.CatalogRepository {
	return &catalogRepository{base}
}

func (r *catalogRepository) ListHospitals(ctx context.Context) ([]*model.Hospital, error) {
	query := `
		SELECT h.id_hospital, h.nombre, h.direccion, h.tipo,
			(SELECT COUNT(*) FROM areas a WHERE a.id_hospital = h.id_hospital) AS total_areas
		FROM hospitales h
		ORDER BY h.nombre
	`

	hospitals := []*model.Hospital{}
	if err := r.db.SelectContext(ctx, &hospitals, query); err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return hospitals, nil
}

func (r *catalogRepository) ListMedications(ctx context.Context) ([]*model.Medication, error) {
	medications := []*model.Medication{}
	err := r.db.SelectContext(ctx, &medications,
		`SELECT id_medicamento, nombre, presentacion FROM medicamentos ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, nil
}

func (r *catalogRepository) ListSpecialties(ctx context.Context) ([]*model.Specialty, error) {
	specialties := []*model.Specialty{}
	err := r.db.SelectContext(ctx, &specialties,
		`SELECT id_especialidad, nombre, descripcion FROM especialidades ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specialties, nil
}
