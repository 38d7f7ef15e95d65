package middleware

import (
	"strings"

	"identity_service/internal/apperr"
	"identity_service/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	// AuthUserKey holds the authenticated user id in the gin context.
	AuthUserKey = "authUser"
	// AuthClaimsKey holds the full decoded token claims.
	AuthClaimsKey = "authClaims"
)

// JWTAuthMiddleware creates a middleware for stateless token authentication.
// The token may arrive as `Authorization: Bearer <token>` or as
// `X-API-Key: <token>`; the Authorization header wins when both are present.
// Verification is pure signature+expiry checking, no database lookup.
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !jwtUtil.Configured() {
			// Fail closed: without a secret no token can be trusted.
			c.Error(apperr.Configuration("token signing secret is not configured"))
			c.Abort()
			return
		}

		tokenString, authErr := extractToken(c)
		if authErr != nil {
			c.Error(authErr)
			c.Abort()
			return
		}

		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			c.Error(apperr.Unauthorized("Invalid or expired token"))
			c.Abort()
			return
		}

		// Set user information in context
		c.Set(AuthUserKey, claims.UserID)
		c.Set(AuthClaimsKey, claims)

		c.Next()
	}
}

func extractToken(c *gin.Context) (string, *apperr.Error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", apperr.Unauthorized("Invalid authorization header format")
		}
		return parts[1], nil
	}

	if apiKey := c.GetHeader("X-API-Key"); apiKey != "" {
		return apiKey, nil
	}

	return "", apperr.Unauthorized("Authentication required: provide Authorization: Bearer <token> or X-API-Key: <token>")
}
