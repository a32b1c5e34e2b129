package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type Service struct {
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	validate    *validator.Validator
}

func NewService(patientRepo repository.PatientRepository, doctorRepo repository.DoctorRepository, validate *validator.Validator) *Service {
	return &Service{patientRepo: patientRepo, doctorRepo: doctorRepo, validate: validate}
}

// Get returns the caller's identity with its role profile and counters.
// Administrators have no profile row.
func (s *Service) Get(ctx context.Context, caller *model.Identity) (*model.Profile, error) {
	profile := &model.Profile{Identity: *caller}

	switch caller.Role {
	case model.RolePatient:
		patient, err := s.patientRepo.GetByUserID(ctx, caller.UserID)
		if err != nil {
			return nil, notFoundOrInternal(err)
		}
		counts, err := s.patientRepo.AppointmentCounts(ctx, patient.ID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		profile.Patient = patient
		profile.Counts = counts
	case model.RoleDoctor:
		doctor, err := s.doctorRepo.GetByUserID(ctx, caller.UserID)
		if err != nil {
			return nil, notFoundOrInternal(err)
		}
		counts, err := s.doctorRepo.TodayCounts(ctx, doctor.ID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		profile.Doctor = doctor
		profile.Counts = counts
	}
	return profile, nil
}

// Update edits the caller's own profile. Doctors only change names and phone.
func (s *Service) Update(ctx context.Context, caller *model.Identity, req *model.UpdateProfileRequest) (*model.Profile, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := s.validate.Check(req, "Nombre y apellido son requeridos", nil); err != nil {
		return nil, err
	}

	upd := &model.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Sex:       req.Sex,
		Phone:     req.Phone,
	}

	profile := &model.Profile{Identity: *caller}
	switch caller.Role {
	case model.RolePatient:
		birthDate, err := model.ParseDate(req.BirthDate)
		if err != nil {
			return nil, apperrors.BadRequest("Fecha de nacimiento inválida", err)
		}
		upd.BirthDate = birthDate

		patient, err := s.patientRepo.Update(ctx, caller.UserID, upd)
		if err != nil {
			return nil, notFoundOrInternal(err)
		}
		profile.Patient = patient
	case model.RoleDoctor:
		doctor, err := s.doctorRepo.Update(ctx, caller.UserID, upd)
		if err != nil {
			return nil, notFoundOrInternal(err)
		}
		profile.Doctor = doctor
	default:
		return nil, apperrors.Forbidden("No se puede actualizar perfil de administrador", nil)
	}

	profile.Name = model.FullName(req.FirstName, req.LastName)
	return profile, nil
}

func notFoundOrInternal(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Usuario no encontrado", err)
	}
	return apperrors.Internal(err)
}
