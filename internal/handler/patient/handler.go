package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/catalog"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// Handler serves the patient's own clinical records.
type Handler struct {
	queries *catalog.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(queries *catalog.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{queries: queries, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patient := []gin.HandlerFunc{h.auth.Authenticate(), h.auth.RequireRole(model.RolePatient)}
	r.GET("/recetas/paciente", append(patient, h.Prescriptions)...)
	r.GET("/examenes/paciente", append(patient, h.Exams)...)
}

func (h *Handler) Prescriptions(c *gin.Context) {
	prescriptions, err := h.queries.PatientPrescriptions(c.Request.Context(), middleware.IdentityFrom(c).UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"recetas": prescriptions})
}

func (h *Handler) Exams(c *gin.Context) {
	exams, err := h.queries.PatientExams(c.Request.Context(), middleware.IdentityFrom(c).UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"examenes": exams})
}
