package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// ContextIdentity is the gin context key holding the caller's *model.Identity.
const ContextIdentity = "identity"

type TokenVerifier interface {
	Verify(token string) (*model.Identity, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate reads the bearer token and stores the caller's identity.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			httputil.AbortWithMessage(c, http.StatusUnauthorized, "Token requerido")
			return
		}

		identity, err := m.verifier.Verify(token)
		if err != nil {
			httputil.AbortWithMessage(c, http.StatusForbidden, "Token inválido o expirado")
			return
		}

		c.Set(ContextIdentity, identity)
		c.Next()
	}
}

// RequireRole lets the request through only for the given roles. It must run
// after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFrom(c)
		if identity == nil {
			httputil.AbortWithMessage(c, http.StatusUnauthorized, "Token requerido")
			return
		}
		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		httputil.AbortWithMessage(c, http.StatusForbidden, "Acceso no autorizado")
	}
}

// IdentityFrom returns the identity set by Authenticate, or nil.
func IdentityFrom(c *gin.Context) *model.Identity {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil
	}
	identity, _ := v.(*model.Identity)
	return identity
}

// bearerToken takes the second word of the header, so "Bearer x" and "Token x"
// both yield x.
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
