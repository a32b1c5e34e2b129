// Package booking creates, cancels and reads appointments.
package booking

import (
	"context"
	"errors"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

const defaultListLimit = 20

type Config struct {
	// StrictCancel refuses to cancel appointments that are no longer pending.
	StrictCancel bool
	ListLimit    int
}

type Service struct {
	apptRepo    repository.AppointmentRepository
	patientRepo repository.PatientRepository
	validate    *validator.Validator
	events      event.Recorder
	metrics     *metrics.Metrics
	cfg         Config
}

func NewService(
	apptRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	validate *validator.Validator,
	events event.Recorder,
	m *metrics.Metrics,
	cfg Config,
) *Service {
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = defaultListLimit
	}
	return &Service{
		apptRepo:    apptRepo,
		patientRepo: patientRepo,
		validate:    validate,
		events:      events,
		metrics:     m,
		cfg:         cfg,
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

// List returns the caller's appointments, newest first.
func (s *Service) List(ctx context.Context, patientUserID int64) ([]*model.AppointmentView, error) {
	patient, err := s.patientFor(ctx, patientUserID)
	if err != nil {
		return nil, err
	}
	appts, err := s.apptRepo.ListByPatient(ctx, patient.ID, s.cfg.ListLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appts, nil
}

// Book creates a pending appointment for the calling patient. The
// availability check and the insert are a single statement.
func (s *Service) Book(ctx context.Context, caller *model.Identity, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if err := s.validate.Check(req, "Doctor y fecha/hora requeridos", nil); err != nil {
		return nil, err
	}
	when, err := model.ParseScheduleTime(req.ScheduledAt)
	if err != nil {
		return nil, apperrors.BadRequest("Fecha/hora inválida", err)
	}

	patient, err := s.patientFor(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		PatientID:   patient.ID,
		DoctorID:    req.DoctorID,
		HospitalID:  req.HospitalID,
		ScheduledAt: when,
		Reason:      req.Reason,
	}
	if err := s.apptRepo.CreatePending(ctx, appt); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotTaken):
			s.metrics.BookingConflicts.Inc()
			return nil, apperrors.Conflict("El doctor no está disponible en ese horario", err)
		case errors.Is(err, repository.ErrMissingReference):
			return nil, apperrors.NotFound("Doctor u hospital no encontrado", err)
		default:
			return nil, apperrors.Internal(err)
		}
	}
	s.metrics.AppointmentsBooked.Inc()

	s.events.Record(ctx, model.EventAppointmentBooked, notice(caller, patient, appt))
	return appt, nil
}

// Cancel moves the caller's appointment to Cancelada.
func (s *Service) Cancel(ctx context.Context, caller *model.Identity, appointmentID int64) (*model.Appointment, error) {
	appt, err := s.apptRepo.GetForPatientUser(ctx, appointmentID, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Cita no encontrada o no autorizado", err)
		}
		return nil, apperrors.Internal(err)
	}
	if s.cfg.StrictCancel && appt.Status != model.AppointmentStatusPending {
		return nil, apperrors.Conflict("Solo se pueden cancelar citas pendientes", nil)
	}

	if err := s.apptRepo.UpdateStatus(ctx, appt.ID, model.AppointmentStatusCancelled); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Cita no encontrada o no autorizado", err)
		}
		return nil, apperrors.Internal(err)
	}
	appt.Status = model.AppointmentStatusCancelled

	s.events.Record(ctx, model.EventAppointmentCancelled, notice(caller, nil, appt))
	return appt, nil
}

// Get returns an appointment visible to caller. Appointments of other
// patients or doctors read as not found.
func (s *Service) Get(ctx context.Context, caller *model.Identity, id int64) (*model.AppointmentDetail, error) {
	detail, err := s.apptRepo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Cita no encontrada", err)
		}
		return nil, apperrors.Internal(err)
	}

	switch caller.Role {
	case model.RoleAdmin:
		return detail, nil
	case model.RoleDoctor:
		if detail.DoctorUserID == caller.UserID {
			return detail, nil
		}
	case model.RolePatient:
		if detail.PatientUserID == caller.UserID {
			return detail, nil
		}
	default:
		return nil, apperrors.Forbidden("Acceso no autorizado", nil)
	}
	return nil, apperrors.NotFound("Cita no encontrada", nil)
}

func notice(caller *model.Identity, patient *model.Patient, appt *model.Appointment) *model.AppointmentNotice {
	n := &model.AppointmentNotice{
		AppointmentID: appt.ID,
		PatientEmail:  caller.Email,
		PatientName:   caller.Name,
		DoctorID:      appt.DoctorID,
		ScheduledAt:   appt.ScheduledAt,
		Status:        string(appt.Status),
	}
	if patient != nil {
		n.PatientName = patient.FullName()
	}
	return n
}
