package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/microservices/http-api/service"
)

// Context keys populated by AuthMiddleware for downstream handlers.
const (
	ctxClaims = "claims"
	ctxUserID = "userID"
	ctxEmail  = "email"
	ctxRole   = "role"
)

// AuthMiddleware validates the bearer token on every request and places the
// verified claims into the gin context. Requests without a valid token never
// reach a handler.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed authorization header"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireScopes gates a route on the token carrying every listed scope.
// Wildcard grants ("read:*", the admin "*") are honored by Claims.HasScope.
func RequireScopes(requiredScopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "no token claims"})
			c.Abort()
			return
		}

		for _, required := range requiredScopes {
			if !claims.HasScope(required) {
				c.JSON(http.StatusForbidden, gin.H{
					"error":    "insufficient scopes",
					"required": requiredScopes,
				})
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

func claimsFromContext(c *gin.Context) (*service.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*service.Claims)
	return claims, ok
}

// RequireRole gates a route on the token's role claim.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(ctxRole)
		role, ok := v.(string)
		if !exists || !ok || role != requiredRole {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin shorthand for the moderation routes.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole("admin")
}
