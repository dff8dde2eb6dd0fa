package middleware

import (
	"crypto/subtle"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cermakludek/legislative-enums-sub000/internal/api/response"
)

const internalTokenHeader = "X-Internal-Token"

// InternalTokenAuth guards the metrics and debug endpoints. Requests from
// loopback addresses pass unchallenged so local tooling and the in-container
// healthcheck keep working; everything else must present the configured
// token. An empty configured token closes the endpoint to remote callers
// entirely.
func InternalTokenAuth(configured string) gin.HandlerFunc {
	want := []byte(strings.TrimSpace(configured))

	return func(c *gin.Context) {
		if requestFromLoopback(c) {
			c.Next()
			return
		}

		got := []byte(internalTokenFrom(c))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			response.Fail(c, 401, response.ErrUnauthorized, "unauthorized")
			c.Abort()
			return
		}

		c.Next()
	}
}

// internalTokenFrom tries the dedicated header first, then the query
// parameter (scrape configs that cannot set headers), then a Bearer
// authorization as a last resort.
func internalTokenFrom(c *gin.Context) string {
	for _, candidate := range []string{
		c.GetHeader(internalTokenHeader),
		c.Query("internal_token"),
		bearerToken(c.GetHeader("Authorization")),
	} {
		if token := strings.TrimSpace(candidate); token != "" {
			return token
		}
	}
	return ""
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	trimmed := strings.TrimSpace(header)
	if len(trimmed) <= len(prefix) || !strings.EqualFold(trimmed[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(trimmed[len(prefix):])
}

func requestFromLoopback(c *gin.Context) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(c.ClientIP()))
	return err == nil && addr.IsLoopback()
}
