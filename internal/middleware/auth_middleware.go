package middleware

import (
	"strings"

	"github.com/ArowuTest/outline-analytics-backend/internal/apperror"
	"github.com/ArowuTest/outline-analytics-backend/internal/logging"
	"github.com/ArowuTest/outline-analytics-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuthMiddleware
const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
)

// TokenVerifier validates session tokens
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// JWTAuthMiddleware accepts a bearer token or, failing that, the session
// cookie. Requests without a valid token never reach the handler.
func JWTAuthMiddleware(verifier TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(cookieName)
		}
		if token == "" {
			abortWith(c, apperror.Unauthorized)
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("token rejected")
			abortWith(c, apperror.Unauthorized)
			return
		}

		c.Set(userIDKey, claims.UserID())
		c.Set(userEmailKey, claims.Email)
		c.Next()
	}
}

// UserID returns the account id of the authenticated caller
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// UserEmail returns the email of the authenticated caller
func UserEmail(c *gin.Context) string {
	return c.GetString(userEmailKey)
}

func bearerToken(header string) string {
	const scheme = "Bearer "
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return ""
	}
	return strings.TrimSpace(header[len(scheme):])
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	c.AbortWithStatusJSON(err.Status(), gin.H{
		"success": false,
		"code":    err.Code,
		"message": err.Message,
	})
}
