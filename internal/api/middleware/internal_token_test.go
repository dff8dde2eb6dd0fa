package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func internalTokenRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/internal/metrics", InternalTokenAuth(token), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func performRequest(router *gin.Engine, remoteAddr string, modify func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/internal/metrics", nil)
	req.RemoteAddr = remoteAddr
	if modify != nil {
		modify(req)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestInternalTokenAuthLoopbackBypass(t *testing.T) {
	router := internalTokenRouter("s3cret")

	rec := performRequest(router, "127.0.0.1:54321", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("loopback client must pass without a token, got %d", rec.Code)
	}
}

func TestInternalTokenAuthRejectsRemoteWithoutToken(t *testing.T) {
	router := internalTokenRouter("s3cret")

	rec := performRequest(router, "203.0.113.7:4455", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("remote client without token must get 401, got %d", rec.Code)
	}
}

func TestInternalTokenAuthAcceptsTokenSources(t *testing.T) {
	router := internalTokenRouter("s3cret")

	cases := []struct {
		name   string
		modify func(*http.Request)
	}{
		{"header", func(r *http.Request) { r.Header.Set(internalTokenHeader, "s3cret") }},
		{"query", func(r *http.Request) { r.URL.RawQuery = "internal_token=s3cret" }},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer s3cret") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := performRequest(router, "203.0.113.7:4455", tc.modify)
			if rec.Code != http.StatusOK {
				t.Fatalf("valid token via %s must pass, got %d", tc.name, rec.Code)
			}
		})
	}
}

func TestInternalTokenAuthRejectsWrongToken(t *testing.T) {
	router := internalTokenRouter("s3cret")

	rec := performRequest(router, "203.0.113.7:4455", func(r *http.Request) {
		r.Header.Set(internalTokenHeader, "guess")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token must get 401, got %d", rec.Code)
	}
}

func TestInternalTokenAuthEmptyConfigLocksRemoteAccess(t *testing.T) {
	router := internalTokenRouter("")

	rec := performRequest(router, "203.0.113.7:4455", func(r *http.Request) {
		r.Header.Set(internalTokenHeader, "anything")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("empty configured token must reject all remote callers, got %d", rec.Code)
	}

	rec = performRequest(router, "127.0.0.1:54321", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("loopback must still pass with empty configured token, got %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"  Bearer   abc  ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := bearerToken(tc.header); got != tc.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
