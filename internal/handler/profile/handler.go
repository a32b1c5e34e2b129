package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	profileService "github.com/jwalitptl/clinic-api/internal/service/profile"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	service *profileService.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service *profileService.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	perfil := r.Group("/perfil", h.auth.Authenticate())
	{
		perfil.GET("", h.Get)
		perfil.PUT("", h.Update)
	}
}

func (h *Handler) Get(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"perfil": profile})
}

func (h *Handler) Update(c *gin.Context) {
	var req model.UpdateProfileRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	profile, err := h.service.Update(c.Request.Context(), middleware.IdentityFrom(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "Perfil actualizado exitosamente", gin.H{"perfil": profile})
}
