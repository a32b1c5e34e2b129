package appointment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/booking"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	service *booking.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service *booking.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	citas := r.Group("/citas", h.auth.Authenticate())
	{
		patient := h.auth.RequireRole(model.RolePatient)
		citas.GET("/paciente", patient, h.ListMine)
		citas.POST("", patient, h.Book)
		citas.PUT("/:id/cancelar", patient, h.Cancel)
		citas.GET("/:id", h.Get)
	}
}

func (h *Handler) ListMine(c *gin.Context) {
	appts, err := h.service.List(c.Request.Context(), middleware.IdentityFrom(c).UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"citas": appts})
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookAppointmentRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	appt, err := h.service.Book(c.Request.Context(), middleware.IdentityFrom(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusCreated, "Cita agendada exitosamente", gin.H{"cita": appt})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	appt, err := h.service.Cancel(c.Request.Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "Cita cancelada exitosamente", gin.H{"cita": appt})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"cita": detail})
}

func appointmentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondWithError(c, apperrors.NotFound("Cita no encontrada", err))
		return 0, false
	}
	return id, true
}
