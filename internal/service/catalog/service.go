// Package catalog serves the read-only listings: public catalogs, patient
// records and the doctor's day.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

const (
	keyDoctors     = "catalog:doctores"
	keyHospitals   = "catalog:hospitales"
	keyMedications = "catalog:medicamentos"
	keySpecialties = "catalog:especialidades"

	defaultListLimit = 20
)

type Service struct {
	catalogRepo      repository.CatalogRepository
	doctorRepo       repository.DoctorRepository
	patientRepo      repository.PatientRepository
	apptRepo         repository.AppointmentRepository
	prescriptionRepo repository.PrescriptionRepository
	examRepo         repository.ExamRepository
	cache            *cache.Cache
	ttl              time.Duration
	listLimit        int
}

// NewService wires the repositories. Public catalogs are kept in c for ttl;
// a zero ttl disables caching.
func NewService(
	catalogRepo repository.CatalogRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	apptRepo repository.AppointmentRepository,
	prescriptionRepo repository.PrescriptionRepository,
	examRepo repository.ExamRepository,
	c *cache.Cache,
	ttl time.Duration,
	listLimit int,
) *Service {
	if listLimit <= 0 {
		listLimit = defaultListLimit
	}
	return &Service{
		catalogRepo:      catalogRepo,
		doctorRepo:       doctorRepo,
		patientRepo:      patientRepo,
		apptRepo:         apptRepo,
		prescriptionRepo: prescriptionRepo,
		examRepo:         examRepo,
		cache:            c,
		ttl:              ttl,
		listLimit:        listLimit,
	}
}

func cached[T any](s *Service, ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if s.cache != nil && s.ttl > 0 {
		if v, ok := s.cache.Get(key); ok {
			if typed, ok := v.(T); ok {
				return typed, nil
			}
		}
	}

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, apperrors.Internal(err)
	}
	if s.cache != nil && s.ttl > 0 {
		s.cache.Set(key, v, s.ttl)
	}
	return v, nil
}

func (s *Service) Doctors(ctx context.Context) ([]*model.Doctor, error) {
	return cached(s, ctx, keyDoctors, s.doctorRepo.List)
}

func (s *Service) Hospitals(ctx context.Context) ([]*model.Hospital, error) {
	return cached(s, ctx, keyHospitals, s.catalogRepo.ListHospitals)
}

func (s *Service) Medications(ctx context.Context) ([]*model.Medication, error) {
	return cached(s, ctx, keyMedications, s.catalogRepo.ListMedications)
}

func (s *Service) Specialties(ctx context.Context) ([]*model.Specialty, error) {
	return cached(s, ctx, keySpecialties, s.catalogRepo.ListSpecialties)
}

// InvalidateDoctors drops the cached doctor list after a new doctor is created.
func (s *Service) InvalidateDoctors() {
	if s.cache != nil {
		s.cache.Delete(keyDoctors)
	}
}

func (s *Service) patientFor(ctx context.Context, userID int64) (*model.Patient, error) {
	patient, err := s.patientRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Paciente no encontrado", err)
		}
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

func (s *Service) doctorFor(ctx context.Context, userID int64) (*model.Doctor, error) {
	doctor, err := s.doctorRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Doctor no encontrado", err)
		}
		return nil, apperrors.Internal(err)
	}
	return doctor, nil
}

func (s *Service) PatientPrescriptions(ctx context.Context, patientUserID int64) ([]*model.PrescriptionView, error) {
	patient, err := s.patientFor(ctx, patientUserID)
	if err != nil {
		return nil, err
	}
	views, err := s.prescriptionRepo.ListByPatient(ctx, patient.ID, s.listLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return views, nil
}

func (s *Service) PatientExams(ctx context.Context, patientUserID int64) ([]*model.ExamView, error) {
	patient, err := s.patientFor(ctx, patientUserID)
	if err != nil {
		return nil, err
	}
	exams, err := s.examRepo.ListByPatient(ctx, patient.ID, s.listLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return exams, nil
}

// DoctorToday lists today's open appointments of the calling doctor.
func (s *Service) DoctorToday(ctx context.Context, doctorUserID int64) ([]*model.AppointmentView, error) {
	doctor, err := s.doctorFor(ctx, doctorUserID)
	if err != nil {
		return nil, err
	}
	appts, err := s.apptRepo.ListForDoctorToday(ctx, doctor.ID, false)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appts, nil
}

// DoctorAgenda lists every appointment of today with its counters.
func (s *Service) DoctorAgenda(ctx context.Context, doctorUserID int64) (*model.Agenda, error) {
	doctor, err := s.doctorFor(ctx, doctorUserID)
	if err != nil {
		return nil, err
	}
	appts, err := s.apptRepo.ListForDoctorToday(ctx, doctor.ID, true)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	agenda := &model.Agenda{Appointments: appts, Total: len(appts)}
	for _, a := range appts {
		if a.Status == model.AppointmentStatusPending {
			agenda.Pending++
		}
	}
	return agenda, nil
}

func (s *Service) SearchPatients(ctx context.Context, term string) ([]*model.PatientSearchResult, error) {
	results, err := s.patientRepo.Search(ctx, strings.TrimSpace(term), s.listLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return results, nil
}
