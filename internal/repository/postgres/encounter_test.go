package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

func attendTargetRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id_paciente", "estado", "paciente_nombre"})
}

func TestEncounterRepository_Attend(t *testing.T) {
	rec := &model.AttendRecord{
		AppointmentID: 10,
		DoctorID:      3,
		Type:          model.DefaultEncounterType,
		Diagnosis:     "Gripe estacional",
		HistoryNote:   "2025-03-10 [Consulta General] Gripe estacional",
	}

	t.Run("completes appointment in one transaction", func(t *testing.T) {
		base, mock := newMockBase(t)
		repo := NewEncounterRepository(base)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT c.id_paciente, c.estado,.* FOR UPDATE OF c`).
			WithArgs(10, 3).
			WillReturnRows(attendTargetRows().AddRow(5, "Pendiente", "Ana Torres"))
		mock.ExpectExec(`UPDATE citas SET estado`).
			WithArgs("Completada", 10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO atenciones`).
			WithArgs(10, "Consulta General").
			WillReturnRows(sqlmock.NewRows([]string{"id_atencion"}).AddRow(42))
		mock.ExpectExec(`INSERT INTO diagnosticos`).
			WithArgs(42, "Gripe estacional").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO historias_clinicas .* ON CONFLICT \(id_paciente\)`).
			WithArgs(5, rec.HistoryNote).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		result, err := repo.Attend(context.Background(), rec)
		require.NoError(t, err)
		assert.Equal(t, int64(42), result.EncounterID)
		assert.Equal(t, int64(5), result.PatientID)
		assert.Equal(t, "Ana Torres", result.PatientName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips history without note", func(t *testing.T) {
		base, mock := newMockBase(t)
		repo := NewEncounterRepository(base)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT c.id_paciente`).
			WillReturnRows(attendTargetRows().AddRow(5, "Pendiente", "Ana Torres"))
		mock.ExpectExec(`UPDATE citas SET estado`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO atenciones`).
			WillReturnRows(sqlmock.NewRows([]string{"id_atencion"}).AddRow(43))
		mock.ExpectExec(`INSERT INTO diagnosticos`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		noHistory := *rec
		noHistory.HistoryNote = ""
		_, err := repo.Attend(context.Background(), &noHistory)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("appointment of another doctor rolls back", func(t *testing.T) {
		base, mock := newMockBase(t)
		repo := NewEncounterRepository(base)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT c.id_paciente`).
			WithArgs(10, 3).
			WillReturnRows(attendTargetRows())
		mock.ExpectRollback()

		_, err := repo.Attend(context.Background(), rec)
		assert.ErrorIs(t, err, repository.ErrNotOwned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already completed rolls back", func(t *testing.T) {
		base, mock := newMockBase(t)
		repo := NewEncounterRepository(base)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT c.id_paciente`).
			WillReturnRows(attendTargetRows().AddRow(5, "Completada", "Ana Torres"))
		mock.ExpectRollback()

		_, err := repo.Attend(context.Background(), rec)
		assert.ErrorIs(t, err, repository.ErrNotOwned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("diagnosis failure rolls back", func(t *testing.T) {
		base, mock := newMockBase(t)
		repo := NewEncounterRepository(base)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT c.id_paciente`).
			WillReturnRows(attendTargetRows().AddRow(5, "Pendiente", "Ana Torres"))
		mock.ExpectExec(`UPDATE citas SET estado`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO atenciones`).
			WillReturnRows(sqlmock.NewRows([]string{"id_atencion"}).AddRow(44))
		mock.ExpectExec(`INSERT INTO diagnosticos`).WillReturnError(assert.AnError)
		mock.ExpectRollback()

		_, err := repo.Attend(context.Background(), rec)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
