package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const APIVersion = "1.0.0"

// Handler serves the service-level endpoints.
type Handler struct {
	gatherer prometheus.Gatherer
}

// NewHandler exposes the metrics in g. A nil g uses the default registry.
func NewHandler(g prometheus.Gatherer) *Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return &Handler{gatherer: g}
}

func (h *Handler) Status(c *gin.Context) {
	httputil.RespondWithMessage(c, http.StatusOK, "API funcionando correctamente", gin.H{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"version":   APIVersion,
	})
}

func (h *Handler) MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

func (h *Handler) NotFound(c *gin.Context) {
	httputil.AbortWithMessage(c, http.StatusNotFound, "Ruta no encontrada")
}
