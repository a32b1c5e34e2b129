package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

var accountMessages = validator.Messages{
	"dni.dni":         "El DNI debe tener 8 dígitos numéricos",
	"password.min":    "La contraseña debe tener al menos 6 caracteres",
	"email.email":     "El email no es válido",
	"newPassword.min": "La nueva contraseña debe tener al menos 6 caracteres",
}

type Service struct {
	userRepo    repository.UserRepository
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	tokens      *auth.TokenManager
	hasher      security.PasswordHasher
	validate    *validator.Validator
	events      event.Recorder
}

func NewService(
	userRepo repository.UserRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	tokens *auth.TokenManager,
	hasher security.PasswordHasher,
	validate *validator.Validator,
	events event.Recorder,
) *Service {
	return &Service{
		userRepo:    userRepo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		tokens:      tokens,
		hasher:      hasher,
		validate:    validate,
		events:      events,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate checks the credentials and opens a session.
func (s *Service) Authenticate(ctx context.Context, req *model.LoginRequest) (*model.Session, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Check(req, "Email y contraseña requeridos", nil); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("Usuario no encontrado", err)
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return nil, apperrors.Unauthorized("Contraseña incorrecta", err)
		}
		return nil, apperrors.Internal(err)
	}

	sessionUser, err := s.loadSessionUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issue(sessionUser)
}

// Verify validates a bearer token and returns its identity snapshot.
func (s *Service) Verify(token string) (*model.Identity, error) {
	identity, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.Forbidden("Token inválido o expirado", err)
	}
	return identity, nil
}

// RegisterPatient creates a patient account and logs it in. Duplicate email
// or DNI is detected by the unique constraints, so concurrent registrations
// cannot both succeed.
func (s *Service) RegisterPatient(ctx context.Context, req *model.RegisterPatientRequest) (*model.Session, error) {
	req.Email = normalizeEmail(req.Email)
	req.DNI = strings.TrimSpace(req.DNI)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := s.validate.Check(req, "Todos los campos obligatorios son requeridos", accountMessages); err != nil {
		return nil, err
	}

	birthDate, err := model.ParseDate(req.BirthDate)
	if err != nil {
		return nil, apperrors.BadRequest("Fecha de nacimiento inválida", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		RoleID:       model.RoleIDPatient,
		Role:         model.RolePatient,
		Email:        req.Email,
		PasswordHash: hash,
	}
	patient := &model.Patient{
		DNI:       req.DNI,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birthDate,
		Sex:       req.Sex,
	}
	if err := s.userRepo.CreatePatientAccount(ctx, user, patient); err != nil {
		return nil, AccountConflict(err)
	}

	s.events.Record(ctx, model.EventPatientRegistered, map[string]interface{}{
		"id_usuario":  user.ID,
		"id_paciente": patient.ID,
		"email":       user.Email,
	})

	return s.issue(&model.SessionUser{
		Identity: identityOf(user, patient.FullName()),
		Patient:  patient,
	})
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordRequest) error {
	if err := s.validate.Check(req, "Contraseña actual y nueva contraseña requeridas", accountMessages); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Usuario no encontrado", err)
		}
		return apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return apperrors.Unauthorized("Contraseña actual incorrecta", err)
		}
		return apperrors.Internal(err)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) loadSessionUser(ctx context.Context, user *model.User) (*model.SessionUser, error) {
	su := &model.SessionUser{}
	name := user.Email

	switch roleOf(user) {
	case model.RolePatient:
		patient, err := s.patientRepo.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Internal(err)
		}
		if patient != nil {
			su.Patient = patient
			name = patient.FullName()
		}
	case model.RoleDoctor:
		doctor, err := s.doctorRepo.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Internal(err)
		}
		if doctor != nil {
			su.Doctor = doctor
			name = doctor.FullName()
		}
	case model.RoleAdmin:
		name = string(model.RoleAdmin)
	}

	su.Identity = identityOf(user, name)
	return su, nil
}

func (s *Service) issue(su *model.SessionUser) (*model.Session, error) {
	token, expiresAt, err := s.tokens.Issue(su.Identity)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.Session{Token: token, ExpiresAt: expiresAt, User: su}, nil
}

func roleOf(user *model.User) model.Role {
	if user.Role != "" {
		return user.Role
	}
	return model.RoleFromID(user.RoleID)
}

func identityOf(user *model.User, name string) model.Identity {
	return model.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   roleOf(user),
		RoleID: user.RoleID,
		Name:   name,
	}
}

// AccountConflict maps unique violations from account creation to the
// messages shown to users. Other errors become internal errors.
func AccountConflict(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.Conflict("El email ya está registrado", err)
	case errors.Is(err, repository.ErrDuplicateDNI):
		return apperrors.Conflict("El DNI ya está registrado", err)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Conflict("El email o DNI ya están registrados", err)
	default:
		return apperrors.Internal(err)
	}
}
