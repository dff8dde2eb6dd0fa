package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func loggedRequest(t *testing.T, method, path, body string) (observer.LoggedEntry, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, observed := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))

	var seenBody string
	handler := func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			t.Fatalf("handler read body: %v", err)
		}
		seenBody = string(raw)
		c.Status(http.StatusOK)
	}
	router.POST(path, handler)
	router.GET(path, handler)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	return entries[0], seenBody
}

func TestRequestLoggerReplaysBodyToHandler(t *testing.T) {
	body := `{"code":"VN","name_cs":"Vysoké napětí"}`
	entry, seenBody := loggedRequest(t, http.MethodPost, "/codelists", body)

	if seenBody != body {
		t.Fatalf("handler must see the full body after logging, got %q", seenBody)
	}

	fields := entry.ContextMap()
	payload, ok := fields["request_body"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected decoded request_body field, got %v", fields["request_body"])
	}
	if payload["code"] != "VN" {
		t.Fatalf("unexpected logged body: %v", payload)
	}
}

func TestRequestLoggerSkipsReadBodies(t *testing.T) {
	entry, _ := loggedRequest(t, http.MethodGet, "/codelists", "")

	if _, ok := entry.ContextMap()["request_body"]; ok {
		t.Fatal("GET requests must be logged without a body field")
	}
}

func TestRequestLoggerMasksCredentialFields(t *testing.T) {
	entry, _ := loggedRequest(t, http.MethodPost, "/login", `{"username":"admin","password":"hunter2"}`)

	payload, ok := entry.ContextMap()["request_body"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected decoded request_body field, got %v", entry.ContextMap()["request_body"])
	}
	if payload["password"] != "***" {
		t.Fatalf("password must be masked, got %v", payload["password"])
	}
	if payload["username"] != "admin" {
		t.Fatalf("non-sensitive fields must survive, got %v", payload["username"])
	}
}

func TestRequestLoggerIgnoresNonJSONBodies(t *testing.T) {
	entry, seenBody := loggedRequest(t, http.MethodPost, "/codelists", "not-json")

	if seenBody != "not-json" {
		t.Fatalf("handler must still see a non-JSON body, got %q", seenBody)
	}
	if _, ok := entry.ContextMap()["request_body"]; ok {
		t.Fatal("malformed bodies must not be logged")
	}
}
