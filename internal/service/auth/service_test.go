package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type fixture struct {
	users    *mocks.UserRepository
	patients *mocks.PatientRepository
	doctors  *mocks.DoctorRepository
	hasher   security.PasswordHasher
	tokens   *auth.TokenManager
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:    new(mocks.UserRepository),
		patients: new(mocks.PatientRepository),
		doctors:  new(mocks.DoctorRepository),
		hasher:   security.NewBcryptHasher(bcrypt.MinCost),
		tokens:   auth.NewTokenManager("test-secret", time.Hour, "clinic-api"),
	}
	f.svc = NewService(f.users, f.patients, f.doctors, f.tokens, f.hasher, validator.New(), event.Discard)
	return f
}

func (f *fixture) user(t *testing.T, id int64, role model.Role, password string) *model.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return &model.User{ID: id, RoleID: role.ID(), Role: role, Email: "user@example.com", PasswordHash: hash}
}

func assertAppError(t *testing.T, err error, code apperrors.ErrorCode, message string) {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, message, appErr.Message)
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("patient login carries profile and name", func(t *testing.T) {
		f := newFixture(t)
		user := f.user(t, 7, model.RolePatient, "secreto1")
		patient := &model.Patient{ID: 3, UserID: 7, FirstName: "Ana", LastName: "Torres"}
		f.users.On("GetByEmail", ctx, "user@example.com").Return(user, nil)
		f.patients.On("GetByUserID", ctx, int64(7)).Return(patient, nil)

		session, err := f.svc.Authenticate(ctx, &model.LoginRequest{Email: "  USER@example.com ", Password: "secreto1"})
		require.NoError(t, err)
		assert.Equal(t, "Ana Torres", session.User.Name)
		assert.Equal(t, model.RolePatient, session.User.Role)
		assert.Same(t, patient, session.User.Patient)

		identity, err := f.svc.Verify(session.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), identity.UserID)
		assert.Equal(t, "Ana Torres", identity.Name)
	})

	t.Run("admin uses role as name", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByEmail", ctx, "user@example.com").Return(f.user(t, 1, model.RoleAdmin, "secreto1"), nil)

		session, err := f.svc.Authenticate(ctx, &model.LoginRequest{Email: "user@example.com", Password: "secreto1"})
		require.NoError(t, err)
		assert.Equal(t, "Administrador", session.User.Name)
		assert.Nil(t, session.User.Patient)
		assert.Nil(t, session.User.Doctor)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Authenticate(ctx, &model.LoginRequest{Email: "user@example.com"})
		assertAppError(t, err, apperrors.ErrBadRequest, "Email y contraseña requeridos")
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByEmail", ctx, "nadie@example.com").Return(nil, repository.ErrNotFound)

		_, err := f.svc.Authenticate(ctx, &model.LoginRequest{Email: "nadie@example.com", Password: "x"})
		assertAppError(t, err, apperrors.ErrUnauthorized, "Usuario no encontrado")
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByEmail", ctx, "user@example.com").Return(f.user(t, 7, model.RolePatient, "secreto1"), nil)

		_, err := f.svc.Authenticate(ctx, &model.LoginRequest{Email: "user@example.com", Password: "otra-clave"})
		assertAppError(t, err, apperrors.ErrUnauthorized, "Contraseña incorrecta")
	})
}

func TestService_Verify_Expiry(t *testing.T) {
	f := newFixture(t)
	issued := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	now := issued
	f.tokens.WithClock(func() time.Time { return now })

	token, _, err := f.tokens.Issue(model.Identity{UserID: 1, Role: model.RoleDoctor})
	require.NoError(t, err)

	now = issued.Add(time.Hour - time.Second)
	_, err = f.svc.Verify(token)
	assert.NoError(t, err)

	now = issued.Add(time.Hour + time.Second)
	_, err = f.svc.Verify(token)
	assertAppError(t, err, apperrors.ErrForbidden, "Token inválido o expirado")
}

func TestService_RegisterPatient(t *testing.T) {
	ctx := context.Background()
	valid := func() *model.RegisterPatientRequest {
		return &model.RegisterPatientRequest{
			DNI:       "12345678",
			FirstName: "Ana",
			LastName:  "Torres",
			Email:     "Ana@Example.com",
			Password:  "secreto1",
		}
	}

	t.Run("creates account and session", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("CreatePatientAccount", ctx,
			mock.MatchedBy(func(u *model.User) bool {
				return u.Email == "ana@example.com" && u.RoleID == model.RoleIDPatient &&
					f.hasher.Compare(u.PasswordHash, "secreto1") == nil
			}),
			mock.AnythingOfType("*model.Patient"),
		).Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = 30
			p := args.Get(2).(*model.Patient)
			p.ID, p.UserID = 12, 30
		}).Return(nil)

		session, err := f.svc.RegisterPatient(ctx, valid())
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, int64(30), session.User.UserID)
		assert.Equal(t, "Ana Torres", session.User.Name)
		assert.Equal(t, int64(12), session.User.Patient.ID)
		f.users.AssertExpectations(t)
	})

	validation := []struct {
		name    string
		mutate  func(r *model.RegisterPatientRequest)
		message string
	}{
		{"missing dni", func(r *model.RegisterPatientRequest) { r.DNI = "" }, "Todos los campos obligatorios son requeridos"},
		{"short dni", func(r *model.RegisterPatientRequest) { r.DNI = "1234" }, "El DNI debe tener 8 dígitos numéricos"},
		{"letters in dni", func(r *model.RegisterPatientRequest) { r.DNI = "1234567a" }, "El DNI debe tener 8 dígitos numéricos"},
		{"short password", func(r *model.RegisterPatientRequest) { r.Password = "12345" }, "La contraseña debe tener al menos 6 caracteres"},
		{"bad birth date", func(r *model.RegisterPatientRequest) {
			d := "10/03/1990"
			r.BirthDate = &d
		}, "Fecha de nacimiento inválida"},
	}
	for _, tt := range validation {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := valid()
			tt.mutate(req)
			_, err := f.svc.RegisterPatient(ctx, req)
			assertAppError(t, err, apperrors.ErrBadRequest, tt.message)
			f.users.AssertNotCalled(t, "CreatePatientAccount", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	conflicts := []struct {
		name    string
		repoErr error
		message string
	}{
		{"duplicate email", repository.ErrDuplicateEmail, "El email ya está registrado"},
		{"duplicate dni", repository.ErrDuplicateDNI, "El DNI ya está registrado"},
		{"unknown unique violation", repository.ErrDuplicate, "El email o DNI ya están registrados"},
	}
	for _, tt := range conflicts {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.users.On("CreatePatientAccount", ctx, mock.Anything, mock.Anything).Return(tt.repoErr)

			_, err := f.svc.RegisterPatient(ctx, valid())
			assertAppError(t, err, apperrors.ErrConflict, tt.message)
			appErr, _ := apperrors.As(err)
			assert.Equal(t, 400, appErr.StatusCode())
		})
	}
}

func TestService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("updates hash", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByID", ctx, int64(7)).Return(f.user(t, 7, model.RolePatient, "secreto1"), nil)
		f.users.On("UpdatePassword", ctx, int64(7), mock.MatchedBy(func(hash string) bool {
			return f.hasher.Compare(hash, "nueva-clave") == nil
		})).Return(nil)

		err := f.svc.ChangePassword(ctx, 7, &model.ChangePasswordRequest{CurrentPassword: "secreto1", NewPassword: "nueva-clave"})
		require.NoError(t, err)
		f.users.AssertExpectations(t)
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByID", ctx, int64(7)).Return(f.user(t, 7, model.RolePatient, "secreto1"), nil)

		err := f.svc.ChangePassword(ctx, 7, &model.ChangePasswordRequest{CurrentPassword: "otra", NewPassword: "nueva-clave"})
		assertAppError(t, err, apperrors.ErrUnauthorized, "Contraseña actual incorrecta")
		f.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("short new password", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.ChangePassword(ctx, 7, &model.ChangePasswordRequest{CurrentPassword: "secreto1", NewPassword: "123"})
		assertAppError(t, err, apperrors.ErrBadRequest, "La nueva contraseña debe tener al menos 6 caracteres")
	})

	t.Run("missing user", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByID", ctx, int64(7)).Return(nil, repository.ErrNotFound)

		err := f.svc.ChangePassword(ctx, 7, &model.ChangePasswordRequest{CurrentPassword: "secreto1", NewPassword: "nueva-clave"})
		assertAppError(t, err, apperrors.ErrNotFound, "Usuario no encontrado")
	})
}
