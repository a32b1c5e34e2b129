package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository handles accounts in usuarios. Account creation writes the
	// user and its role profile in one transaction.
	UserRepository interface {
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		GetByID(ctx context.Context, id int64) (*model.User, error)
		UpdatePassword(ctx context.Context, id int64, hash string) error
		CreatePatientAccount(ctx context.Context, user *model.User, patient *model.Patient) error
		CreateDoctorAccount(ctx context.Context, user *model.User, doctor *model.Doctor) error
		// CreateAdminAccount writes an Administrador user. Admins have no profile row.
		CreateAdminAccount(ctx context.Context, user *model.User) error
		List(ctx context.Context, limit int) ([]*model.UserSummary, error)
	}

	PatientRepository interface {
		GetByUserID(ctx context.Context, userID int64) (*model.Patient, error)
		Update(ctx context.Context, userID int64, upd *model.ProfileUpdate) (*model.Patient, error)
		Search(ctx context.Context, term string, limit int) ([]*model.PatientSearchResult, error)
		AppointmentCounts(ctx context.Context, patientID int64) (*model.AppointmentCounts, error)
	}

	DoctorRepository interface {
		GetByUserID(ctx context.Context, userID int64) (*model.Doctor, error)
		Update(ctx context.Context, userID int64, upd *model.ProfileUpdate) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
		TodayCounts(ctx context.Context, doctorID int64) (*model.AppointmentCounts, error)
	}

	CatalogRepository interface {
		ListHospitals(ctx context.Context) ([]*model.Hospital, error)
		ListMedications(ctx context.Context) ([]*model.Medication, error)
		ListSpecialties(ctx context.Context) ([]*model.Specialty, error)
	}

	AppointmentRepository interface {
		// CreatePending inserts a Pendiente appointment unless the doctor
		// already has one at the same timestamp, in which case ErrSlotTaken.
		CreatePending(ctx context.Context, appt *model.Appointment) error
		GetForPatientUser(ctx context.Context, id, userID int64) (*model.Appointment, error)
		UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error
		GetDetail(ctx context.Context, id int64) (*model.AppointmentDetail, error)
		ListByPatient(ctx context.Context, patientID int64, limit int) ([]*model.AppointmentView, error)
		// ListForDoctorToday returns today's appointments ordered by time.
		// Cancelled and completed ones are skipped unless includeClosed.
		ListForDoctorToday(ctx context.Context, doctorID int64, includeClosed bool) ([]*model.AppointmentView, error)
		ListRecent(ctx context.Context, limit int) ([]*model.AppointmentView, error)
	}

	EncounterRepository interface {
		// Attend completes the appointment and records the encounter and
		// diagnosis atomically. ErrNotOwned when the appointment is not a
		// pending appointment of rec.DoctorID.
		Attend(ctx context.Context, rec *model.AttendRecord) (*model.AttendResult, error)
	}

	PrescriptionRepository interface {
		// Create inserts the prescription and its items atomically.
		// ErrNotOwned when the encounter does not belong to doctorID.
		Create(ctx context.Context, doctorID, encounterID int64, items []*model.PrescriptionItem) (*model.Prescription, error)
		ListByPatient(ctx context.Context, patientID int64, limit int) ([]*model.PrescriptionView, error)
	}

	ExamRepository interface {
		// CreateOrder inserts the exam and, when note is not empty, its first result.
		CreateOrder(ctx context.Context, exam *model.Exam, note string) error
		ListByPatient(ctx context.Context, patientID int64, limit int) ([]*model.ExamView, error)
	}

	StatsRepository interface {
		Summary(ctx context.Context) (*model.Stats, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkRetry(ctx context.Context, id uuid.UUID, errMsg string, retryAt time.Time) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
