// Package encounter implements the doctor-side clinical workflow: attending
// an appointment, prescribing and ordering exams.
package encounter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type Config struct {
	RecordClinicalHistory bool
	// StrictPrescriptions rejects incomplete items instead of dropping them.
	StrictPrescriptions bool
}

type Service struct {
	doctorRepo       repository.DoctorRepository
	encounterRepo    repository.EncounterRepository
	prescriptionRepo repository.PrescriptionRepository
	examRepo         repository.ExamRepository
	validate         *validator.Validator
	events           event.Recorder
	metrics          *metrics.Metrics
	cfg              Config
	now              func() time.Time
}

func NewService(
	doctorRepo repository.DoctorRepository,
	encounterRepo repository.EncounterRepository,
	prescriptionRepo repository.PrescriptionRepository,
	examRepo repository.ExamRepository,
	validate *validator.Validator,
	events event.Recorder,
	m *metrics.Metrics,
	cfg Config,
) *Service {
	return &Service{
		doctorRepo:       doctorRepo,
		encounterRepo:    encounterRepo,
		prescriptionRepo: prescriptionRepo,
		examRepo:         examRepo,
		validate:         validate,
		events:           events,
		metrics:          m,
		cfg:              cfg,
		now:              time.Now,
	}
}

func (s *Service) doctorFor(ctx context.Context, userID int64, missing func(string, error) *apperrors.AppError) (*model.Doctor, error) {
	doctor, err := s.doctorRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, missing("Doctor no encontrado", err)
		}
		return nil, apperrors.Internal(err)
	}
	return doctor, nil
}

// Attend completes a pending appointment of the calling doctor and records
// the encounter, its diagnosis and the clinical history note atomically.
func (s *Service) Attend(ctx context.Context, doctorUserID int64, req *model.AttendRequest) (*model.AttendResult, error) {
	req.Diagnosis = strings.TrimSpace(req.Diagnosis)
	if err := s.validate.Check(req, "Cita y diagnóstico requeridos", nil); err != nil {
		return nil, err
	}

	doctor, err := s.doctorFor(ctx, doctorUserID, apperrors.NotFound)
	if err != nil {
		return nil, err
	}

	rec := &model.AttendRecord{
		AppointmentID: req.AppointmentID,
		DoctorID:      doctor.ID,
		Type:          strings.TrimSpace(req.Type),
		Diagnosis:     req.Diagnosis,
	}
	if rec.Type == "" {
		rec.Type = model.DefaultEncounterType
	}
	if s.cfg.RecordClinicalHistory {
		rec.HistoryNote = HistoryNote(s.now(), rec.Type, rec.Diagnosis, req.Notes)
	}

	result, err := s.encounterRepo.Attend(ctx, rec)
	if err != nil {
		if errors.Is(err, repository.ErrNotOwned) {
			return nil, apperrors.Forbidden("No autorizado para atender esta cita", err)
		}
		return nil, apperrors.Internal(err)
	}
	s.metrics.EncountersCompleted.Inc()

	s.events.Record(ctx, model.EventEncounterCompleted, map[string]interface{}{
		"id_atencion": result.EncounterID,
		"id_cita":     result.AppointmentID,
		"id_paciente": result.PatientID,
		"id_doctor":   doctor.ID,
	})
	return result, nil
}

// HistoryNote formats the line appended to a patient's clinical history.
func HistoryNote(at time.Time, encounterType, diagnosis, notes string) string {
	line := fmt.Sprintf("%s [%s] %s", at.Format("2006-01-02"), encounterType, diagnosis)
	if notes = strings.TrimSpace(notes); notes != "" {
		line += " - " + notes
	}
	return line
}

// Prescribe issues a prescription for an encounter of the calling doctor.
// Items missing a medication or instructions are dropped, or rejected in
// strict mode.
func (s *Service) Prescribe(ctx context.Context, doctorUserID int64, req *model.PrescribeRequest) (*model.Prescription, error) {
	if err := s.validate.Check(req, "Atención y medicamentos requeridos", nil); err != nil {
		return nil, err
	}

	items := make([]*model.PrescriptionItem, 0, len(req.Items))
	for i, in := range req.Items {
		in.Instructions = strings.TrimSpace(in.Instructions)
		if !in.Complete() {
			if s.cfg.StrictPrescriptions {
				return nil, apperrors.BadRequest(fmt.Sprintf("Medicamento %d incompleto", i+1), nil)
			}
			continue
		}
		items = append(items, &model.PrescriptionItem{
			MedicationID: *in.MedicationID,
			Instructions: in.Instructions,
		})
	}
	if len(items) == 0 {
		return nil, apperrors.BadRequest("Debe indicar al menos un medicamento válido", nil)
	}

	doctor, err := s.doctorFor(ctx, doctorUserID, apperrors.NotFound)
	if err != nil {
		return nil, err
	}

	rx, err := s.prescriptionRepo.Create(ctx, doctor.ID, req.EncounterID, items)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotOwned):
			return nil, apperrors.Forbidden("No autorizado para recetar en esta atención", err)
		case errors.Is(err, repository.ErrMissingReference):
			return nil, apperrors.NotFound("Medicamento no encontrado", err)
		default:
			return nil, apperrors.Internal(err)
		}
	}

	s.events.Record(ctx, model.EventPrescriptionIssued, map[string]interface{}{
		"id_receta":   rx.ID,
		"id_atencion": rx.EncounterID,
		"id_doctor":   doctor.ID,
		"items":       len(rx.Items),
	})
	return rx, nil
}

// OrderExam creates a pending exam order. Observations are stored as the
// order's first result.
func (s *Service) OrderExam(ctx context.Context, doctorUserID int64, req *model.OrderExamRequest) (*model.Exam, error) {
	req.Type = strings.TrimSpace(req.Type)
	if err := s.validate.Check(req, "Paciente y tipo de examen requeridos", nil); err != nil {
		return nil, err
	}

	doctor, err := s.doctorFor(ctx, doctorUserID, apperrors.Forbidden)
	if err != nil {
		return nil, err
	}

	exam := &model.Exam{
		PatientID: req.PatientID,
		Type:      req.Type,
		Status:    model.ExamStatusPending,
	}
	var note string
	if obs := strings.TrimSpace(req.Observations); obs != "" {
		note = model.ExamOrderNotePrefix + obs
	}

	if err := s.examRepo.CreateOrder(ctx, exam, note); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, apperrors.NotFound("Paciente no encontrado", err)
		}
		return nil, apperrors.Internal(err)
	}

	s.events.Record(ctx, model.EventExamOrdered, map[string]interface{}{
		"id_examen":   exam.ID,
		"id_paciente": exam.PatientID,
		"id_doctor":   doctor.ID,
		"tipo_examen": exam.Type,
	})
	return exam, nil
}
