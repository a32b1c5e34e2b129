// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

var (
	_ repository.UserRepository         = (*UserRepository)(nil)
	_ repository.PatientRepository      = (*PatientRepository)(nil)
	_ repository.DoctorRepository       = (*DoctorRepository)(nil)
	_ repository.CatalogRepository      = (*CatalogRepository)(nil)
	_ repository.AppointmentRepository  = (*AppointmentRepository)(nil)
	_ repository.EncounterRepository    = (*EncounterRepository)(nil)
	_ repository.PrescriptionRepository = (*PrescriptionRepository)(nil)
	_ repository.ExamRepository         = (*ExamRepository)(nil)
	_ repository.StatsRepository        = (*StatsRepository)(nil)
	_ repository.OutboxRepository       = (*OutboxRepository)(nil)
)

type UserRepository struct{ mock.Mock }

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *UserRepository) CreatePatientAccount(ctx context.Context, user *model.User, patient *model.Patient) error {
	return m.Called(ctx, user, patient).Error(0)
}

func (m *UserRepository) CreateDoctorAccount(ctx context.Context, user *model.User, doctor *model.Doctor) error {
	return m.Called(ctx, user, doctor).Error(0)
}

func (m *UserRepository) CreateAdminAccount(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) List(ctx context.Context, limit int) ([]*model.UserSummary, error) {
	args := m.Called(ctx, limit)
	if u := args.Get(0); u != nil {
		return u.([]*model.UserSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

type PatientRepository struct{ mock.Mock }

func (m *PatientRepository) GetByUserID(ctx context.Context, userID int64) (*model.Patient, error) {
	args := m.Called(ctx, userID)
	if p := args.Get(0); p != nil {
		return p.(*model.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, userID int64, upd *model.ProfileUpdate) (*model.Patient, error) {
	args := m.Called(ctx, userID, upd)
	if p := args.Get(0); p != nil {
		return p.(*model.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PatientRepository) Search(ctx context.Context, term string, limit int) ([]*model.PatientSearchResult, error) {
	args := m.Called(ctx, term, limit)
	if p := args.Get(0); p != nil {
		return p.([]*model.PatientSearchResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PatientRepository) AppointmentCounts(ctx context.Context, patientID int64) (*model.AppointmentCounts, error) {
	args := m.Called(ctx, patientID)
	if c := args.Get(0); c != nil {
		return c.(*model.AppointmentCounts), args.Error(1)
	}
	return nil, args.Error(1)
}

type DoctorRepository struct{ mock.Mock }

func (m *DoctorRepository) GetByUserID(ctx context.Context, userID int64) (*model.Doctor, error) {
	args := m.Called(ctx, userID)
	if d := args.Get(0); d != nil {
		return d.(*model.Doctor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DoctorRepository) Update(ctx context.Context, userID int64, upd *model.ProfileUpdate) (*model.Doctor, error) {
	args := m.Called(ctx, userID, upd)
	if d := args.Get(0); d != nil {
		return d.(*model.Doctor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DoctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	args := m.Called(ctx)
	if d := args.Get(0); d != nil {
		return d.([]*model.Doctor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DoctorRepository) TodayCounts(ctx context.Context, doctorID int64) (*model.AppointmentCounts, error) {
	args := m.Called(ctx, doctorID)
	if c := args.Get(0); c != nil {
		return c.(*model.AppointmentCounts), args.Error(1)
	}
	return nil, args.Error(1)
}

type CatalogRepository struct{ mock.Mock }

func (m *CatalogRepository) ListHospitals(ctx context.Context) ([]*model.Hospital, error) {
	args := m.Called(ctx)
	if h := args.Get(0); h != nil {
		return h.([]*model.Hospital), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogRepository) ListMedications(ctx context.Context) ([]*model.Medication, error) {
	args := m.Called(ctx)
	if md := args.Get(0); md != nil {
		return md.([]*model.Medication), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogRepository) ListSpecialties(ctx context.Context) ([]*model.Specialty, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.([]*model.Specialty), args.Error(1)
	}
	return nil, args.Error(1)
}

type AppointmentRepository struct{ mock.Mock }

func (m *AppointmentRepository) CreatePending(ctx context.Context, appt *model.Appointment) error {
	return m.Called(ctx, appt).Error(0)
}

func (m *AppointmentRepository) GetForPatientUser(ctx context.Context, id, userID int64) (*model.Appointment, error) {
	args := m.Called(ctx, id, userID)
	if a := args.Get(0); a != nil {
		return a.(*model.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *AppointmentRepository) GetDetail(ctx context.Context, id int64) (*model.AppointmentDetail, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*model.AppointmentDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AppointmentRepository) ListByPatient(ctx context.Context, patientID int64, limit int) ([]*model.AppointmentView, error) {
	args := m.Called(ctx, patientID, limit)
	if a := args.Get(0); a != nil {
		return a.([]*model.AppointmentView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AppointmentRepository) ListForDoctorToday(ctx context.Context, doctorID int64, includeClosed bool) ([]*model.AppointmentView, error) {
	args := m.Called(ctx, doctorID, includeClosed)
	if a := args.Get(0); a != nil {
		return a.([]*model.AppointmentView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AppointmentRepository) ListRecent(ctx context.Context, limit int) ([]*model.AppointmentView, error) {
	args := m.Called(ctx, limit)
	if a := args.Get(0); a != nil {
		return a.([]*model.AppointmentView), args.Error(1)
	}
	return nil, args.Error(1)
}

type EncounterRepository struct{ mock.Mock }

func (m *EncounterRepository) Attend(ctx context.Context, rec *model.AttendRecord) (*model.AttendResult, error) {
	args := m.Called(ctx, rec)
	if r := args.Get(0); r != nil {
		return r.(*model.AttendResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type PrescriptionRepository struct{ mock.Mock }

func (m *PrescriptionRepository) Create(ctx context.Context, doctorID, encounterID int64, items []*model.PrescriptionItem) (*model.Prescription, error) {
	args := m.Called(ctx, doctorID, encounterID, items)
	if p := args.Get(0); p != nil {
		return p.(*model.Prescription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PrescriptionRepository) ListByPatient(ctx context.Context, patientID int64, limit int) ([]*model.PrescriptionView, error) {
	args := m.Called(ctx, patientID, limit)
	if p := args.Get(0); p != nil {
		return p.([]*model.PrescriptionView), args.Error(1)
	}
	return nil, args.Error(1)
}

type ExamRepository struct{ mock.Mock }

func (m *ExamRepository) CreateOrder(ctx context.Context, exam *model.Exam, note string) error {
	return m.Called(ctx, exam, note).Error(0)
}

func (m *ExamRepository) ListByPatient(ctx context.Context, patientID int64, limit int) ([]*model.ExamView, error) {
	args := m.Called(ctx, patientID, limit)
	if e := args.Get(0); e != nil {
		return e.([]*model.ExamView), args.Error(1)
	}
	return nil, args.Error(1)
}

type StatsRepository struct{ mock.Mock }

func (m *StatsRepository) Summary(ctx context.Context) (*model.Stats, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*model.Stats), args.Error(1)
	}
	return nil, args.Error(1)
}

type OutboxRepository struct{ mock.Mock }

func (m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if e := args.Get(0); e != nil {
		return e.([]*model.OutboxEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *OutboxRepository) MarkRetry(ctx context.Context, id uuid.UUID, errMsg string, retryAt time.Time) error {
	return m.Called(ctx, id, errMsg, retryAt).Error(0)
}

func (m *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return m.Called(ctx, id, errMsg).Error(0)
}

func (m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
