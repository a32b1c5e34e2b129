package doctor

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/internal/service/catalog"
	"github.com/jwalitptl/clinic-api/internal/service/encounter"
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

type fixture struct {
	engine        *gin.Engine
	doctors       *mocks.DoctorRepository
	patients      *mocks.PatientRepository
	appts         *mocks.AppointmentRepository
	encounters    *mocks.EncounterRepository
	prescriptions *mocks.PrescriptionRepository
	exams         *mocks.ExamRepository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{
		doctors:       new(mocks.DoctorRepository),
		patients:      new(mocks.PatientRepository),
		appts:         new(mocks.AppointmentRepository),
		encounters:    new(mocks.EncounterRepository),
		prescriptions: new(mocks.PrescriptionRepository),
		exams:         new(mocks.ExamRepository),
	}
	m := metrics.New("test", prometheus.NewRegistry())
	enc := encounter.NewService(f.doctors, f.encounters, f.prescriptions, f.exams, validator.New(), event.Discard, m,
		encounter.Config{RecordClinicalHistory: true})
	queries := catalog.NewService(new(mocks.CatalogRepository), f.doctors, f.patients, f.appts, f.prescriptions, f.exams,
		cache.New(time.Minute, time.Minute), time.Minute, 20)

	auth := middleware.NewAuthMiddleware(tokens{
		"doctor":  {UserID: 30, Role: model.RoleDoctor},
		"patient": {UserID: 10, Role: model.RolePatient},
	})
	f.engine = gin.New()
	NewHandler(enc, queries, auth).RegisterRoutes(f.engine.Group("/api"))
	f.doctors.On("GetByUserID", mock.Anything, int64(30)).Return(&model.Doctor{ID: 3, UserID: 30}, nil)
	return f
}

func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestHandler_RequiresDoctor(t *testing.T) {
	f := setup(t)
	w := f.do(http.MethodGet, "/api/doctor/agenda", "patient", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Acceso no autorizado")
}

func TestHandler_Agenda(t *testing.T) {
	f := setup(t)
	f.appts.On("ListForDoctorToday", mock.Anything, int64(3), true).Return([]*model.AppointmentView{
		{Appointment: model.Appointment{ID: 1, Status: model.AppointmentStatusPending}},
		{Appointment: model.Appointment{ID: 2, Status: model.AppointmentStatusCancelled}},
	}, nil)

	w := f.do(http.MethodGet, "/api/doctor/agenda", "doctor", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)
	assert.Contains(t, w.Body.String(), `"pendientes":1`)
}

func TestHandler_Attend(t *testing.T) {
	f := setup(t)
	f.encounters.On("Attend", mock.Anything, mock.MatchedBy(func(r *model.AttendRecord) bool {
		return r.AppointmentID == 8
	})).Return(&model.AttendResult{EncounterID: 40, AppointmentID: 8, PatientName: "Ana Ruiz"}, nil).Once()
	f.encounters.On("Attend", mock.Anything, mock.MatchedBy(func(r *model.AttendRecord) bool {
		return r.AppointmentID == 9
	})).Return(nil, repository.ErrNotOwned).Once()

	w := f.do(http.MethodPost, "/api/doctor/atender", "doctor", `{"id_cita":8,"diagnostico":"Gripe"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id_atencion":40`)
	assert.Contains(t, w.Body.String(), `"paciente_nombre":"Ana Ruiz"`)

	w = f.do(http.MethodPost, "/api/doctor/atender", "doctor", `{"id_cita":9,"diagnostico":"Gripe"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/api/doctor/atender", "doctor", `{"id_cita":9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cita y diagnóstico requeridos")
}

func TestHandler_Prescribe_DropsIncompleteItems(t *testing.T) {
	f := setup(t)
	f.prescriptions.On("Create", mock.Anything, int64(3), int64(40), mock.MatchedBy(func(items []*model.PrescriptionItem) bool {
		return len(items) == 1 && items[0].MedicationID == 2
	})).Return(&model.Prescription{ID: 77, EncounterID: 40}, nil)

	body := `{"id_atencion":40,"medicamentos":[{"id_medicamento":2,"indicaciones":"1 cada 8h"},{"id_medicamento":5,"indicaciones":""}]}`
	w := f.do(http.MethodPost, "/api/doctor/recetas", "doctor", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id_receta":77`)
	f.prescriptions.AssertExpectations(t)
}

func TestHandler_SearchPatients(t *testing.T) {
	f := setup(t)
	f.patients.On("Search", mock.Anything, "ruiz", 20).Return([]*model.PatientSearchResult{}, nil)

	w := f.do(http.MethodGet, "/api/doctor/pacientes?search=ruiz", "doctor", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"pacientes":[]}`, w.Body.String())
}

func TestHandler_OrderExam(t *testing.T) {
	f := setup(t)
	f.exams.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.Exam"), "").Return(nil)

	w := f.do(http.MethodPost, "/api/doctor/examenes", "doctor", `{"id_paciente":1,"tipo_examen":"Hemograma"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Orden de examen creada")
}
