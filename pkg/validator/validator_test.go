package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type registration struct {
	DNI      string `json:"dni" validate:"required,dni"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

var messages = Messages{
	"dni.dni":      "El DNI debe tener 8 dígitos numéricos",
	"password.min": "La contraseña debe tener al menos 6 caracteres",
}

func TestIsDNI(t *testing.T) {
	assert.True(t, IsDNI("12345678"))
	assert.False(t, IsDNI("1234567"))
	assert.False(t, IsDNI("1234567a"))
	assert.False(t, IsDNI("123456789"))
}

func TestCheck(t *testing.T) {
	v := New()
	const fallback = "Todos los campos obligatorios son requeridos"

	tests := []struct {
		name    string
		in      registration
		wantMsg string
	}{
		{"valid", registration{"12345678", "ana@mail.com", "secreto"}, ""},
		{"missing field wins", registration{"12", "", "secreto"}, fallback},
		{"bad dni", registration{"12AB5678", "ana@mail.com", "secreto"}, "El DNI debe tener 8 dígitos numéricos"},
		{"short password", registration{"12345678", "ana@mail.com", "123"}, "La contraseña debe tener al menos 6 caracteres"},
		{"unmapped rule", registration{"12345678", "not-an-email", "secreto"}, fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Check(tt.in, fallback, messages)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperrors.As(err)
			if assert.True(t, ok) {
				assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
				assert.Equal(t, tt.wantMsg, appErr.Message)
			}
		})
	}
}
