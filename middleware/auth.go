package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ContextUserID is the authenticated user's id, set by AuthMiddleware.
	ContextUserID = "user_id"
	// ContextAuthHeader is the raw Authorization header value, forwarded
	// verbatim to the core API. Session mechanics stay upstream's concern.
	ContextAuthHeader = "auth_header"
	// ContextIsAdmin marks tokens carrying an admin role claim.
	ContextIsAdmin = "is_admin"
)

// AuthMiddleware parses the bearer token just enough to key per-user state
// (the checkout staging store) and to reject unauthenticated requests before
// they cost an upstream call. The upstream API revalidates the token itself.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, int(userID))
		c.Set(ContextAuthHeader, header)
		if role, ok := claims["role"].(string); ok && role == "admin" {
			c.Set(ContextIsAdmin, true)
		}

		c.Next()
	}
}

// AdminOnly gates the back-office routes. It runs after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id from the request context.
func UserID(c *gin.Context) int {
	return c.GetInt(ContextUserID)
}

// AuthHeader returns the raw Authorization header to forward upstream.
func AuthHeader(c *gin.Context) string {
	return c.GetString(ContextAuthHeader)
}
