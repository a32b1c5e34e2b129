package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/catalog"
	"github.com/jwalitptl/clinic-api/internal/service/encounter"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// Handler serves the doctor workspace under /doctor.
type Handler struct {
	encounters *encounter.Service
	queries    *catalog.Service
	auth       *middleware.AuthMiddleware
}

func NewHandler(encounters *encounter.Service, queries *catalog.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{encounters: encounters, queries: queries, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctor := r.Group("/doctor", h.auth.Authenticate(), h.auth.RequireRole(model.RoleDoctor))
	{
		doctor.GET("/citas/hoy", h.Today)
		doctor.GET("/agenda", h.Agenda)
		doctor.GET("/pacientes", h.SearchPatients)
		doctor.POST("/atender", h.Attend)
		doctor.POST("/recetas", h.Prescribe)
		doctor.POST("/examenes", h.OrderExam)
	}
}

func (h *Handler) Today(c *gin.Context) {
	appts, err := h.queries.DoctorToday(c.Request.Context(), middleware.IdentityFrom(c).UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"citas": appts})
}

func (h *Handler) Agenda(c *gin.Context) {
	agenda, err := h.queries.DoctorAgenda(c.Request.Context(), middleware.IdentityFrom(c).UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{
		"agenda":     agenda.Appointments,
		"total":      agenda.Total,
		"pendientes": agenda.Pending,
	})
}

func (h *Handler) SearchPatients(c *gin.Context) {
	patients, err := h.queries.SearchPatients(c.Request.Context(), c.Query("search"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"pacientes": patients})
}

func (h *Handler) Attend(c *gin.Context) {
	var req model.AttendRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	result, err := h.encounters.Attend(c.Request.Context(), middleware.IdentityFrom(c).UserID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusCreated, "Atención registrada exitosamente", gin.H{
		"id_atencion":     result.EncounterID,
		"paciente_nombre": result.PatientName,
	})
}

func (h *Handler) Prescribe(c *gin.Context) {
	var req model.PrescribeRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	prescription, err := h.encounters.Prescribe(c.Request.Context(), middleware.IdentityFrom(c).UserID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusCreated, "Receta creada exitosamente", gin.H{
		"id_receta": prescription.ID,
		"receta":    prescription,
	})
}

func (h *Handler) OrderExam(c *gin.Context) {
	var req model.OrderExamRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	exam, err := h.encounters.OrderExam(c.Request.Context(), middleware.IdentityFrom(c).UserID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusCreated, "Orden de examen creada", gin.H{"examen": exam})
}
