package authentication

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mehmetcc/credential-session-service/internal/account"
)

// TokenVerifier turns a raw access token into the account id it was issued to.
type TokenVerifier interface {
	Validate(accessToken string) (uint, error)
}

// RequireAccessToken rejects requests without a valid bearer access token and
// stores the token subject under account.ContextSubjectKey. The account itself
// is not loaded; a token outlives a deleted account until it expires.
func RequireAccessToken(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer <token>"})
			return
		}

		subject, err := verifier.Validate(parts[1])
		if err != nil {
			logger.Debug("access token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired access token"})
			return
		}

		c.Set(account.ContextSubjectKey, subject)
		c.Next()
	}
}
