package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type statsRepository struct {
	BaseRepository
}

func NewStatsRepository(base BaseRepository) repository.StatsRepository {
	return &statsRepository{base}
}

func (r *statsRepository) Summary(ctx context.Context) (*model.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM usuarios) AS total_usuarios,
			(SELECT COUNT(*) FROM pacientes) AS total_pacientes,
			(SELECT COUNT(*) FROM doctores) AS total_doctores,
			(SELECT COUNT(*) FROM citas WHERE estado = 'Pendiente') AS citas_pendientes,
			(SELECT COUNT(*) FROM citas
			 WHERE estado = 'Completada' AND DATE(fecha_hora) = CURRENT_DATE) AS citas_hoy,
			(SELECT COUNT(*) FROM hospitales) AS total_hospitales,
			(SELECT COUNT(*) FROM recetas WHERE DATE(fecha) = CURRENT_DATE) AS recetas_hoy
	`

	var stats model.Stats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &stats, nil
}
