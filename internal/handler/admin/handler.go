package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	adminService "github.com/jwalitptl/clinic-api/internal/service/admin"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	service *adminService.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service *adminService.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin", h.auth.Authenticate(), h.auth.RequireRole(model.RoleAdmin))
	{
		admin.GET("/usuarios", h.ListUsers)
		admin.POST("/doctores", h.CreateDoctor)
		admin.GET("/estadisticas", h.Stats)
	}
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"usuarios": users})
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.CreateDoctor(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusCreated, "Doctor creado exitosamente", gin.H{"doctor": doctor})
}

func (h *Handler) Stats(c *gin.Context) {
	dash, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{
		"estadisticas":    dash.Stats,
		"ultimosUsuarios": dash.RecentUsers,
		"citasRecientes":  dash.RecentAppointments,
	})
}
