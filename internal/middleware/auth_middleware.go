package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dogubilet/ticket-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// AccessTokenCookie carries the access token for browser clients
const AccessTokenCookie = "access_token"

// UserContext represents the authenticated user's information
type UserContext struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

// AuthMiddleware validates the access token from the Authorization header,
// or from the access_token cookie when no header is sent
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logrus.WithFields(logrus.Fields{
			"path": c.Request.URL.Path,
			"ip":   c.ClientIP(),
		})

		tokenString, code := extractToken(c)
		if code != "" {
			log.WithField("code", code).Warn("AUTH FAILED: no usable token")
			message := "Authorization header or access_token cookie is required"
			if code == "INVALID_AUTH_FORMAT" {
				message = "Invalid authorization header format. Expected: Bearer <token>"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": message,
				"code":    code,
			})
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if errors.Is(err, gojwt.ErrTokenExpired) {
				log.WithError(err).Warn("AUTH FAILED: token expired")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "token_expired",
					"message": "Access token has expired. Please log in again.",
					"code":    "TOKEN_EXPIRED",
				})
				return
			}
			log.WithError(err).Warn("AUTH FAILED: invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Invalid access token",
				"code":    "INVALID_TOKEN",
			})
			return
		}

		c.Set(UserContextKey, UserContext{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		c.Next()
	}
}

// extractToken returns the raw token, or an error code when none is usable
func extractToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
			return cookie, ""
		}
		return "", "MISSING_AUTH_HEADER"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "INVALID_AUTH_FORMAT"
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", "INVALID_AUTH_FORMAT"
	}
	return token, ""
}

// RequireRole creates a middleware that checks if user has one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User context not found. Auth middleware may not be applied.",
				"code":    "MISSING_USER_CONTEXT",
			})
			return
		}

		for _, role := range roles {
			if userCtx.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "You don't have permission to access this resource",
			"code":    "INSUFFICIENT_PERMISSIONS",
		})
	}
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}

	userCtx, ok := value.(UserContext)
	return userCtx, ok
}
