// internal/middleware/helpers.go
package middleware

import (
	"isp-billing-service/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// GetUserID returns the authenticated user's id.
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetUserID gets the user id from context or panics. Only for routes behind Auth.
func MustGetUserID(c *gin.Context) int64 {
	id, ok := GetUserID(c)
	if !ok {
		panic("user_id not found in context")
	}
	return id
}

// GetClaims returns the verified token claims.
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(CtxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok && claims != nil
}

