// Package admin implements the administrator operations: user listing,
// doctor accounts and the dashboard.
package admin

import (
	"context"
	"strings"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

const (
	userListLimit     = 50
	recentUsersLimit  = 5
	recentApptsLimit  = 10
	createDoctorError = "Todos los campos son requeridos"
	createAdminError  = "Email y contraseña son requeridos"
)

var doctorMessages = validator.Messages{
	"email.email":  "El email no es válido",
	"password.min": "La contraseña debe tener al menos 6 caracteres",
}

// DoctorCache is notified when the doctor directory changes.
type DoctorCache interface {
	InvalidateDoctors()
}

type Service struct {
	userRepo  repository.UserRepository
	apptRepo  repository.AppointmentRepository
	statsRepo repository.StatsRepository
	hasher    security.PasswordHasher
	validate  *validator.Validator
	doctors   DoctorCache
}

func NewService(
	userRepo repository.UserRepository,
	apptRepo repository.AppointmentRepository,
	statsRepo repository.StatsRepository,
	hasher security.PasswordHasher,
	validate *validator.Validator,
	doctors DoctorCache,
) *Service {
	return &Service{
		userRepo:  userRepo,
		apptRepo:  apptRepo,
		statsRepo: statsRepo,
		hasher:    hasher,
		validate:  validate,
		doctors:   doctors,
	}
}

func (s *Service) ListUsers(ctx context.Context) ([]*model.UserSummary, error) {
	users, err := s.userRepo.List(ctx, userListLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}

// CreateDoctor creates a doctor account. The user and doctor rows are written
// in one transaction.
func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DNI = strings.TrimSpace(req.DNI)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := s.validate.Check(req, createDoctorError, doctorMessages); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		RoleID:       model.RoleIDDoctor,
		Role:         model.RoleDoctor,
		Email:        req.Email,
		PasswordHash: hash,
	}
	doctor := &model.Doctor{
		DNI:         req.DNI,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		SpecialtyID: req.SpecialtyID,
	}
	if err := s.userRepo.CreateDoctorAccount(ctx, user, doctor); err != nil {
		return nil, auth.AccountConflict(err)
	}

	if s.doctors != nil {
		s.doctors.InvalidateDoctors()
	}
	return doctor, nil
}

// CreateAdmin writes an Administrador account. Self-registration only creates
// patients, so this is how a fresh install gets its first admin.
func (s *Service) CreateAdmin(ctx context.Context, req *model.CreateAdminRequest) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Check(req, createAdminError, doctorMessages); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		RoleID:       model.RoleIDAdmin,
		Role:         model.RoleAdmin,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.CreateAdminAccount(ctx, user); err != nil {
		return nil, auth.AccountConflict(err)
	}
	return user, nil
}

// Dashboard gathers the counters with the latest users and appointments.
func (s *Service) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	stats, err := s.statsRepo.Summary(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	users, err := s.userRepo.List(ctx, recentUsersLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	appts, err := s.apptRepo.ListRecent(ctx, recentApptsLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.Dashboard{Stats: stats, RecentUsers: users, RecentAppointments: appts}, nil
}
