package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maeshaii/backend-wny/internal/models"
)

const claimsKey = "auth_claims"

func abort(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message, "code": code})
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Middleware requires a valid, unrevoked access token and stores its claims
// in the context.
func Middleware(tokens *TokenManager, revoker Revoker, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := BearerToken(c)
		if raw == "" {
			abort(c, http.StatusUnauthorized, "Authentication required", "UNAUTHORIZED")
			return
		}

		claims, err := tokens.Parse(raw, AccessToken)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, ErrTokenExpired) {
				message = "Token expired"
			}
			logger.Debug("Rejected access token", "path", c.Request.URL.Path, "error", err)
			abort(c, http.StatusUnauthorized, message, "UNAUTHORIZED")
			return
		}

		if revoker != nil {
			revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Error("Failed to check token denylist", "error", err)
				abort(c, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
				return
			}
			if revoked {
				abort(c, http.StatusUnauthorized, "Token revoked", "UNAUTHORIZED")
				return
			}
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole allows the request through when the caller holds one of roles.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Authentication required", "UNAUTHORIZED")
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "You do not have permission to perform this action", "FORBIDDEN")
	}
}

func ClaimsFromContext(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
