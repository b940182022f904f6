package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"reviewhub/internal/microservices/http-api/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "Bearer abc123", "abc123", true},
		{"missing header", "", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"no token", "Bearer", "", false},
		{"extra parts", "Bearer abc 123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := bearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func scopedRouter(scopes []string, role string, guard gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/guarded",
		func(c *gin.Context) {
			c.Set(ctxClaims, &service.Claims{Scopes: scopes, Role: role})
			c.Set(ctxRole, role)
		},
		guard,
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return r
}

func TestRequireScopes(t *testing.T) {
	req := httptest.NewRequest("GET", "/guarded", nil)

	t.Run("allows matching scope", func(t *testing.T) {
		w := httptest.NewRecorder()
		scopedRouter([]string{"read:*", "write:reviews"}, "user", RequireScopes("write:reviews")).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("allows wildcard grant", func(t *testing.T) {
		w := httptest.NewRecorder()
		scopedRouter([]string{"read:*"}, "user", RequireScopes("read:businesses")).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects missing scope", func(t *testing.T) {
		w := httptest.NewRecorder()
		scopedRouter([]string{"read:*"}, "user", RequireScopes("write:businesses")).ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("rejects when no claims set", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := gin.New()
		r.GET("/guarded", RequireScopes("read:reviews"), func(c *gin.Context) { c.Status(http.StatusOK) })
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	req := httptest.NewRequest("GET", "/guarded", nil)

	t.Run("allows admin role", func(t *testing.T) {
		w := httptest.NewRecorder()
		scopedRouter(nil, "admin", RequireAdmin()).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects user role", func(t *testing.T) {
		w := httptest.NewRecorder()
		scopedRouter(nil, "user", RequireAdmin()).ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
