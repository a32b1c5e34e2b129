package catalog

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogService "github.com/jwalitptl/clinic-api/internal/service/catalog"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// Handler serves the public catalogs. No token is needed.
type Handler struct {
	service *catalogService.Service
}

func NewHandler(service *catalogService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/doctores", list("doctores", h.service.Doctors))
	r.GET("/hospitales", list("hospitales", h.service.Hospitals))
	r.GET("/medicamentos", list("medicamentos", h.service.Medications))
	r.GET("/especialidades", list("especialidades", h.service.Specialties))
}

func list[T any](key string, load func(context.Context) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := load(c.Request.Context())
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, http.StatusOK, gin.H{key: items})
	}
}
