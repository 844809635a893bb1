package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// SenderIDKey is the key used to store the authenticated sender in the context
	SenderIDKey = "sender_id"

	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// Auth validates the bearer token and stores the sender identity on the
// context. Tokens are HMAC-signed JWTs whose subject is the sender id.
func Auth(logger *slog.Logger, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authorizationHeader)
		if !strings.HasPrefix(header, bearerPrefix) {
			abortUnauthorized(c, "Missing bearer token")
			return
		}

		tokenString := strings.TrimPrefix(header, bearerPrefix)
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.Warn("Rejected bearer token", "error", err)
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			abortUnauthorized(c, "Token carries no subject")
			return
		}

		c.Set(SenderIDKey, subject)
		c.Next()
	}
}

// GetSenderID retrieves the authenticated sender id from the gin context
func GetSenderID(c *gin.Context) string {
	if v, exists := c.Get(SenderIDKey); exists {
		if senderID, ok := v.(string); ok {
			return senderID
		}
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
		"correlation_id": GetCorrelationID(c),
	})
}
