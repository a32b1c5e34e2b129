package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
	// Idle is how long an unused client limiter is kept.
	Idle time.Duration
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	name    string
	config  RateLimiterConfig
	clients *cache.Cache
}

// NewRateLimiter stores its buckets in clients under keys prefixed by name, so
// several limiters can share one cache.
func NewRateLimiter(name string, config RateLimiterConfig, clients *cache.Cache) *RateLimiter {
	if config.Idle <= 0 {
		config.Idle = 10 * time.Minute
	}
	return &RateLimiter{name: name, config: config, clients: clients}
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	key := rl.name + ":" + ip
	if v, ok := rl.clients.Get(key); ok {
		rl.clients.Set(key, v, rl.config.Idle)
		return v.(*rate.Limiter)
	}

	l := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	if err := rl.clients.Add(key, l, rl.config.Idle); err != nil {
		// Another request created it first.
		if v, ok := rl.clients.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.Rate <= 0 {
			c.Next()
			return
		}
		if !rl.limiter(c.ClientIP()).Allow() {
			httputil.AbortWithMessage(c, http.StatusTooManyRequests, "Demasiadas solicitudes, intente más tarde")
			return
		}
		c.Next()
	}
}
