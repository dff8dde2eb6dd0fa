package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cermakludek/legislative-enums-sub000/internal/api/response"
)

const apiKeyNameContextKey = "api_key_name"

// APIKeyAuth guards the read-only export surface used by partner systems.
// Keys are configured as "name:secret" pairs; the matched name is attached to
// the context for request logging.
func APIKeyAuth(configuredKeys []string) gin.HandlerFunc {
	type apiKey struct {
		name   string
		secret string
	}

	keys := make([]apiKey, 0, len(configuredKeys))
	for _, entry := range configuredKeys {
		name, secret, found := strings.Cut(strings.TrimSpace(entry), ":")
		if !found {
			name, secret = "default", name
		}
		name = strings.TrimSpace(name)
		secret = strings.TrimSpace(secret)
		if secret == "" {
			continue
		}
		keys = append(keys, apiKey{name: name, secret: secret})
	}

	return func(c *gin.Context) {
		provided := strings.TrimSpace(c.GetHeader("X-API-Key"))
		if provided == "" || len(keys) == 0 {
			response.Fail(c, 401, response.ErrUnauthorized, "unauthorized")
			c.Abort()
			return
		}

		for _, key := range keys {
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key.secret)) == 1 {
				c.Set(apiKeyNameContextKey, key.name)
				c.Next()
				return
			}
		}

		response.Fail(c, 401, response.ErrUnauthorized, "unauthorized")
		c.Abort()
	}
}

func GetAPIKeyName(c *gin.Context) (string, bool) {
	value, ok := c.Get(apiKeyNameContextKey)
	if !ok {
		return "", false
	}
	name, ok := value.(string)
	return name, ok && name != ""
}
