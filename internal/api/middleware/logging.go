package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	loggerpkg "github.com/cermakludek/legislative-enums-sub000/pkg/logger"
)

// Codelist payloads are small; anything beyond this is truncated before it
// reaches the log.
const maxLoggedBodyBytes = 64 << 10

// RequestLogger emits one structured line per request once the handler chain
// finishes. Bodies are captured for mutating methods only, so the
// high-volume public read traffic is logged without payloads, and sensitive
// fields are masked before the line is written.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()

		var body []byte
		if logsRequestBody(c.Request.Method) {
			body = bufferRequestBody(c)
		}

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("status", status),
			zap.Int("bytes_out", c.Writer.Size()),
			zap.Duration("duration", time.Since(start)),
		}
		if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
			fields = append(fields, zap.String("query", rawQuery))
		}
		if keyName, ok := GetAPIKeyName(c); ok {
			fields = append(fields, zap.String("api_key", keyName))
		}
		if claims, ok := GetClaims(c); ok {
			fields = append(fields, zap.String("user", claims.Username))
		}
		if payload := decodeLoggedBody(body); payload != nil {
			fields = append(fields, zap.Any("request_body", payload))
		}

		fields = loggerpkg.SanitizeFields(fields)
		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func logsRequestBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// bufferRequestBody reads the body up front and hands the handler chain a
// replayable copy.
func bufferRequestBody(c *gin.Context) []byte {
	if c.Request == nil || c.Request.Body == nil {
		return nil
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Request.Body = io.NopCloser(bytes.NewReader(nil))
		return nil
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	if len(raw) > maxLoggedBodyBytes {
		return raw[:maxLoggedBodyBytes]
	}
	return raw
}

// decodeLoggedBody only logs bodies that parse as JSON; raw bytes of a
// malformed request never reach the log.
func decodeLoggedBody(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return payload
}
