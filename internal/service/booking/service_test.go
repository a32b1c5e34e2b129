package booking

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type recordedEvents struct {
	types []string
}

func (r *recordedEvents) Record(_ context.Context, eventType string, _ interface{}) {
	r.types = append(r.types, eventType)
}

type fixture struct {
	appts    *mocks.AppointmentRepository
	patients *mocks.PatientRepository
	events   *recordedEvents
	metrics  *metrics.Metrics
	svc      *Service
}

func newFixture(cfg Config) *fixture {
	f := &fixture{
		appts:    new(mocks.AppointmentRepository),
		patients: new(mocks.PatientRepository),
		events:   &recordedEvents{},
		metrics:  metrics.New("test", prometheus.NewRegistry()),
	}
	f.svc = NewService(f.appts, f.patients, validator.New(), f.events, f.metrics, cfg)
	return f
}

var (
	patientCaller = &model.Identity{UserID: 20, Email: "ana@example.com", Role: model.RolePatient, Name: "Ana Torres"}
	patientRow    = &model.Patient{ID: 5, UserID: 20, FirstName: "Ana", LastName: "Torres"}
)

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	return m.GetCounter().GetValue()
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) *apperrors.AppError {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestService_Book(t *testing.T) {
	ctx := context.Background()
	req := func() *model.BookAppointmentRequest {
		return &model.BookAppointmentRequest{DoctorID: 2, ScheduledAt: "2025-03-10T09:30"}
	}

	t.Run("creates pending appointment", func(t *testing.T) {
		f := newFixture(Config{})
		f.patients.On("GetByUserID", ctx, int64(20)).Return(patientRow, nil)
		f.appts.On("CreatePending", ctx, mock.MatchedBy(func(a *model.Appointment) bool {
			return a.PatientID == 5 && a.DoctorID == 2 && a.ScheduledAt.Hour() == 9 && a.ScheduledAt.Minute() == 30
		})).Run(func(args mock.Arguments) {
			a := args.Get(1).(*model.Appointment)
			a.ID, a.Status = 77, model.AppointmentStatusPending
		}).Return(nil)

		appt, err := f.svc.Book(ctx, patientCaller, req())
		require.NoError(t, err)
		assert.Equal(t, int64(77), appt.ID)
		assert.Equal(t, model.AppointmentStatusPending, appt.Status)
		assert.Equal(t, []string{model.EventAppointmentBooked}, f.events.types)
		assert.Equal(t, 1.0, counterValue(f.metrics.AppointmentsBooked))
	})

	t.Run("second booking of the same slot conflicts", func(t *testing.T) {
		f := newFixture(Config{})
		f.patients.On("GetByUserID", ctx, int64(20)).Return(patientRow, nil)
		f.appts.On("CreatePending", ctx, mock.Anything).Return(nil).Once()
		f.appts.On("CreatePending", ctx, mock.Anything).Return(repository.ErrSlotTaken).Once()

		_, err := f.svc.Book(ctx, patientCaller, req())
		require.NoError(t, err)

		_, err = f.svc.Book(ctx, patientCaller, req())
		appErr := requireCode(t, err, apperrors.ErrConflict)
		assert.Equal(t, "El doctor no está disponible en ese horario", appErr.Message)
		assert.Equal(t, 400, appErr.StatusCode())
		assert.Equal(t, 1.0, counterValue(f.metrics.BookingConflicts))
		assert.Len(t, f.events.types, 1)
	})

	t.Run("missing doctor", func(t *testing.T) {
		f := newFixture(Config{})
		r := req()
		r.DoctorID = 0
		_, err := f.svc.Book(ctx, patientCaller, r)
		appErr := requireCode(t, err, apperrors.ErrBadRequest)
		assert.Equal(t, "Doctor y fecha/hora requeridos", appErr.Message)
	})

	t.Run("unparseable timestamp", func(t *testing.T) {
		f := newFixture(Config{})
		r := req()
		r.ScheduledAt = "mañana"
		_, err := f.svc.Book(ctx, patientCaller, r)
		requireCode(t, err, apperrors.ErrBadRequest)
	})

	t.Run("caller without patient profile", func(t *testing.T) {
		f := newFixture(Config{})
		f.patients.On("GetByUserID", ctx, int64(20)).Return(nil, repository.ErrNotFound)
		_, err := f.svc.Book(ctx, patientCaller, req())
		requireCode(t, err, apperrors.ErrNotFound)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		f := newFixture(Config{})
		f.patients.On("GetByUserID", ctx, int64(20)).Return(patientRow, nil)
		f.appts.On("CreatePending", ctx, mock.Anything).Return(repository.ErrMissingReference)
		_, err := f.svc.Book(ctx, patientCaller, req())
		requireCode(t, err, apperrors.ErrNotFound)
	})
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()
	completed := func() *model.Appointment {
		return &model.Appointment{ID: 9, PatientID: 5, Status: model.AppointmentStatusCompleted}
	}

	t.Run("allows non pending by default", func(t *testing.T) {
		f := newFixture(Config{})
		f.appts.On("GetForPatientUser", ctx, int64(9), int64(20)).Return(completed(), nil)
		f.appts.On("UpdateStatus", ctx, int64(9), model.AppointmentStatusCancelled).Return(nil)

		appt, err := f.svc.Cancel(ctx, patientCaller, 9)
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusCancelled, appt.Status)
		assert.Equal(t, []string{model.EventAppointmentCancelled}, f.events.types)
	})

	t.Run("strict mode refuses non pending", func(t *testing.T) {
		f := newFixture(Config{StrictCancel: true})
		f.appts.On("GetForPatientUser", ctx, int64(9), int64(20)).Return(completed(), nil)

		_, err := f.svc.Cancel(ctx, patientCaller, 9)
		requireCode(t, err, apperrors.ErrConflict)
		f.appts.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("appointment of another patient", func(t *testing.T) {
		f := newFixture(Config{})
		f.appts.On("GetForPatientUser", ctx, int64(9), int64(20)).Return(nil, repository.ErrNotFound)

		_, err := f.svc.Cancel(ctx, patientCaller, 9)
		appErr := requireCode(t, err, apperrors.ErrNotFound)
		assert.Equal(t, "Cita no encontrada o no autorizado", appErr.Message)
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	detail := &model.AppointmentDetail{PatientUserID: 20, DoctorUserID: 30}
	detail.ID = 9
	detail.ScheduledAt = time.Now()

	tests := []struct {
		name   string
		caller *model.Identity
		found  bool
	}{
		{"own patient", &model.Identity{UserID: 20, Role: model.RolePatient}, true},
		{"other patient", &model.Identity{UserID: 21, Role: model.RolePatient}, false},
		{"own doctor", &model.Identity{UserID: 30, Role: model.RoleDoctor}, true},
		{"other doctor", &model.Identity{UserID: 31, Role: model.RoleDoctor}, false},
		{"admin", &model.Identity{UserID: 1, Role: model.RoleAdmin}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Config{})
			f.appts.On("GetDetail", ctx, int64(9)).Return(detail, nil)

			got, err := f.svc.Get(ctx, tt.caller, 9)
			if tt.found {
				require.NoError(t, err)
				assert.Same(t, detail, got)
				return
			}
			appErr := requireCode(t, err, apperrors.ErrNotFound)
			assert.Equal(t, "Cita no encontrada", appErr.Message)
		})
	}
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Config{ListLimit: 20})
	f.patients.On("GetByUserID", ctx, int64(20)).Return(patientRow, nil)
	f.appts.On("ListByPatient", ctx, int64(5), 20).Return([]*model.AppointmentView{{}}, nil)

	appts, err := f.svc.List(ctx, 20)
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}
