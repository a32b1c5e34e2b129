package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	identity *model.Identity
}

func (v stubVerifier) Verify(token string) (*model.Identity, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return v.identity, nil
}

func perform(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	m := NewAuthMiddleware(stubVerifier{identity: &model.Identity{UserID: 4, Role: model.RoleDoctor}})

	r := gin.New()
	r.GET("/doctor", m.Authenticate(), m.RequireRole(model.RoleDoctor), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": IdentityFrom(c).UserID})
	})
	r.GET("/admin", m.Authenticate(), m.RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		path   string
		auth   string
		status int
		body   string
	}{
		{"missing header", "/doctor", "", http.StatusUnauthorized, "Token requerido"},
		{"scheme only", "/doctor", "Bearer", http.StatusUnauthorized, "Token requerido"},
		{"invalid token", "/doctor", "Bearer nope", http.StatusForbidden, "Token inválido o expirado"},
		{"allowed role", "/doctor", "Bearer good", http.StatusOK, `"id":4`},
		{"wrong role", "/admin", "Bearer good", http.StatusForbidden, "Acceso no autorizado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.auth != "" {
				header.Set("Authorization", tt.auth)
			}
			w := perform(r, http.MethodGet, tt.path, header)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	// Raw map keys are not canonical; perform must still deliver them.
	w := perform(r, http.MethodGet, "/", http.Header{"X-Request-ID": []string{"abc"}})
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "abc", w.Header().Get(HeaderXRequestID))

	w = perform(r, http.MethodGet, "/", nil)
	assert.Len(t, w.Body.String(), 36)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := perform(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Error del servidor"}`, w.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(DefaultSecurityConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "max-age=15552000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, w.Header().Get("Content-Security-Policy"))
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"too":"large"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_PerClient(t *testing.T) {
	clients := cache.New(time.Minute, time.Minute)
	rl := NewRateLimiter("auth", RateLimiterConfig{Rate: 0.001, Burst: 2}, clients)

	r := gin.New()
	r.POST("/login", rl.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
	assert.Equal(t, 2, clients.ItemCount())
}

func TestMetrics_RouteTemplate(t *testing.T) {
	m := metrics.New("test", prometheus.NewRegistry())
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/citas/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodGet, "/api/citas/1", nil)
	perform(r, http.MethodGet, "/api/citas/2", nil)
	perform(r, http.MethodGet, "/nope", nil)

	var out dto.Metric
	require.NoError(t, m.HTTPRequests.WithLabelValues("GET", "/api/citas/:id", "200").Write(&out))
	assert.Equal(t, float64(2), out.GetCounter().GetValue())
	require.NoError(t, m.HTTPRequests.WithLabelValues("GET", "unmatched", "404").Write(&out))
	assert.Equal(t, float64(1), out.GetCounter().GetValue())
}
