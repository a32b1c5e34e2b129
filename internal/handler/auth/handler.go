package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	authService "github.com/jwalitptl/clinic-api/internal/service/auth"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	service *authService.Service
	auth    *middleware.AuthMiddleware
	limiter gin.HandlerFunc
}

// NewHandler wires the auth routes. limiter guards login and registration
// and may be nil.
func NewHandler(service *authService.Service, auth *middleware.AuthMiddleware, limiter gin.HandlerFunc) *Handler {
	return &Handler{service: service, auth: auth, limiter: limiter}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	public := []gin.HandlerFunc{}
	if h.limiter != nil {
		public = append(public, h.limiter)
	}
	r.POST("/login", append(public, h.Login)...)
	r.POST("/registro", append(public, h.Register)...)

	r.GET("/verify-token", h.auth.Authenticate(), h.VerifyToken)
	r.PUT("/cambiar-password", h.auth.Authenticate(), h.ChangePassword)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Authenticate(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{
		"token": session.Token,
		"user":  session.User,
	})
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterPatientRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	session, err := h.service.RegisterPatient(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, http.StatusCreated, "¡Registro exitoso!", gin.H{
		"token": session.Token,
		"user":  session.User,
	})
}

func (h *Handler) VerifyToken(c *gin.Context) {
	httputil.RespondWithMessage(c, http.StatusOK, "Token válido", gin.H{
		"user": middleware.IdentityFrom(c),
	})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	identity := middleware.IdentityFrom(c)
	if err := h.service.ChangePassword(c.Request.Context(), identity.UserID, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, http.StatusOK, "Contraseña cambiada exitosamente", nil)
}
