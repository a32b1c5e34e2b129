package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	ReleaseMode  bool
	AllowOrigins []string
	CORSMaxAge   time.Duration
	MaxBodyBytes int64
	RateLimit    rate.Limit
	RateBurst    int
	// StaticDir serves the web client at / when set.
	StaticDir string
}

type Router struct {
	engine  *gin.Engine
	config  RouterConfig
	root    *handler.Handler
	health  Handler
	api     []Handler
	metrics *metrics.Metrics
	limiter *middleware.RateLimiter
}

// NewRouter builds the engine and its global middleware. limiterStore holds
// the per-client API rate limiters.
func NewRouter(
	config RouterConfig,
	root *handler.Handler,
	health Handler,
	m *metrics.Metrics,
	limiterStore *cache.Cache,
	api ...Handler,
) *Router {
	if config.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.Metrics(m),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		cors.New(cors.Config{
			AllowOrigins:     config.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization", middleware.HeaderXRequestID},
			ExposeHeaders:    []string{middleware.HeaderXRequestID},
			AllowCredentials: true,
			MaxAge:           config.CORSMaxAge,
		}),
		gzip.Gzip(gzip.DefaultCompression),
	)

	return &Router{
		engine:  engine,
		config:  config,
		root:    root,
		health:  health,
		api:     api,
		metrics: m,
		limiter: middleware.NewRateLimiter("api", middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		}, limiterStore),
	}
}

func (r *Router) Setup() *gin.Engine {
	r.health.RegisterRoutes(&r.engine.RouterGroup)
	r.engine.GET("/metrics", r.root.MetricsHandler())

	api := r.engine.Group("/api",
		r.limiter.RateLimit(),
		middleware.SizeLimit(r.config.MaxBodyBytes),
	)
	api.GET("/status", r.root.Status)
	for _, h := range r.api {
		h.RegisterRoutes(api)
	}

	if r.config.StaticDir != "" {
		r.engine.Static("/app", r.config.StaticDir)
		r.engine.StaticFile("/", r.config.StaticDir+"/index.html")
	}

	r.engine.NoRoute(r.root.NotFound)
	return r.engine
}
