package appointment

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/internal/service/booking"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type tokens map[string]*model.Identity

func (t tokens) Verify(token string) (*model.Identity, error) {
	if id, ok := t[token]; ok {
		return id, nil
	}
	return nil, errors.New("invalid")
}

var identities = tokens{
	"patient": {UserID: 10, Email: "ana@example.com", Role: model.RolePatient, Name: "Ana Ruiz"},
	"doctor":  {UserID: 30, Role: model.RoleDoctor},
}

func setup(t *testing.T) (*gin.Engine, *mocks.AppointmentRepository, *mocks.PatientRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	appts := new(mocks.AppointmentRepository)
	patients := new(mocks.PatientRepository)
	svc := booking.NewService(appts, patients, validator.New(), event.Discard,
		metrics.New("test", prometheus.NewRegistry()), booking.Config{})

	r := gin.New()
	NewHandler(svc, middleware.NewAuthMiddleware(identities)).RegisterRoutes(r.Group("/api"))
	return r, appts, patients
}

func do(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Book(t *testing.T) {
	r, appts, patients := setup(t)
	patients.On("GetByUserID", mock.Anything, int64(10)).Return(&model.Patient{ID: 1, FirstName: "Ana"}, nil)
	appts.On("CreatePending", mock.Anything, mock.AnythingOfType("*model.Appointment")).
		Run(func(args mock.Arguments) {
			a := args.Get(1).(*model.Appointment)
			a.ID = 55
			a.Status = model.AppointmentStatusPending
		}).Return(nil).Once()

	w := do(r, http.MethodPost, "/api/citas", "patient", `{"id_doctor":3,"fecha_hora":"2025-03-10T09:30"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Cita agendada exitosamente"`)
	assert.Contains(t, w.Body.String(), `"id_cita":55`)
}

func TestHandler_Book_SlotTaken(t *testing.T) {
	r, appts, patients := setup(t)
	patients.On("GetByUserID", mock.Anything, int64(10)).Return(&model.Patient{ID: 1}, nil)
	appts.On("CreatePending", mock.Anything, mock.Anything).Return(repository.ErrSlotTaken)

	w := do(r, http.MethodPost, "/api/citas", "patient", `{"id_doctor":3,"fecha_hora":"2025-03-10T09:30"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "El doctor no está disponible en ese horario")
}

func TestHandler_Book_Validation(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodPost, "/api/citas", "patient", ``)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Doctor y fecha/hora requeridos")

	w = do(r, http.MethodPost, "/api/citas", "doctor", `{"id_doctor":3,"fecha_hora":"2025-03-10T09:30"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_Cancel(t *testing.T) {
	r, appts, _ := setup(t)
	appts.On("GetForPatientUser", mock.Anything, int64(55), int64(10)).
		Return(&model.Appointment{ID: 55, Status: model.AppointmentStatusPending}, nil)
	appts.On("UpdateStatus", mock.Anything, int64(55), model.AppointmentStatusCancelled).Return(nil)

	w := do(r, http.MethodPut, "/api/citas/55/cancelar", "patient", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cita cancelada exitosamente")

	appts.On("GetForPatientUser", mock.Anything, int64(56), int64(10)).Return(nil, repository.ErrNotFound)
	w = do(r, http.MethodPut, "/api/citas/56/cancelar", "patient", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Cita no encontrada o no autorizado")
}

func TestHandler_Get(t *testing.T) {
	r, appts, _ := setup(t)
	detail := &model.AppointmentDetail{PatientUserID: 10, DoctorUserID: 30}
	detail.ID = 7
	appts.On("GetDetail", mock.Anything, int64(7)).Return(detail, nil)

	w := do(r, http.MethodGet, "/api/citas/7", "doctor", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cita":{`)
	assert.NotContains(t, w.Body.String(), "paciente_id_usuario")

	w = do(r, http.MethodGet, "/api/citas/abc", "doctor", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/citas/7", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_ListMine(t *testing.T) {
	r, appts, patients := setup(t)
	patients.On("GetByUserID", mock.Anything, int64(10)).Return(&model.Patient{ID: 1}, nil)
	appts.On("ListByPatient", mock.Anything, int64(1), 20).Return([]*model.AppointmentView{}, nil)

	w := do(r, http.MethodGet, "/api/citas/paciente", "patient", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"citas":[]}`, w.Body.String())
}
