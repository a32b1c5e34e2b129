package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientRepository_Search(t *testing.T) {
	tests := []struct {
		term    string
		pattern string
	}{
		{"Ana", "%Ana%"},
		{"_", `%\_%`},
		{"50%", `%50\%%`},
		{`a\b`, `%a\\b%`},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			base, mock := newMockBase(t)
			repo := NewPatientRepository(base)

			mock.ExpectQuery(`FROM pacientes p .* ILIKE \$1 ESCAPE`).
				WithArgs(tt.pattern, 20).
				WillReturnRows(sqlmock.NewRows([]string{"id_paciente"}))

			results, err := repo.Search(context.Background(), tt.term, 20)
			require.NoError(t, err)
			assert.Empty(t, results)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
