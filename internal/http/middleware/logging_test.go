package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/x", func(c *gin.Context) { seen = RequestIDFrom(c) })

	w := do(t, r, httptest.NewRequest(http.MethodGet, "/x", nil))
	if got := w.Header().Get("X-Request-ID"); got == "" || got != seen {
		t.Fatalf("generated id not echoed: header=%q ctx=%q", got, seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	w = do(t, r, req)
	if w.Header().Get("X-Request-ID") != "rid-1" || seen != "rid-1" {
		t.Fatalf("client id not reused: %q", w.Header().Get("X-Request-ID"))
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("a", maxRequestIDLength+1))
	w = do(t, r, req)
	if len(w.Header().Get("X-Request-ID")) > maxRequestIDLength {
		t.Fatalf("oversized id was kept")
	}
}

func TestRecovery_WritesEnvelope(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{Base: &base}), Recovery())
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("after write")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "rid-panic")
	w := do(t, r, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["code"] != "internal_error" || body["request_id"] != "rid-panic" {
		t.Fatalf("unexpected body %v", body)
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), "rid-panic") {
		t.Fatalf("panic not logged with request id: %s", buf.String())
	}

	w = do(t, r, httptest.NewRequest(http.MethodGet, "/late", nil))
	if w.Body.String() != "partial" {
		t.Fatalf("body rewritten after write: %q", w.Body.String())
	}
}

func TestLoggerFrom_FallsBackToGlobal(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if LoggerFrom(c) == nil {
		t.Fatal("nil logger")
	}
}

func TestRouteOf_And_Truncate(t *testing.T) {
	r := gin.New()
	var route string
	r.GET("/pets/:id", func(c *gin.Context) { route = routeOf(c) })
	r.NoRoute(func(c *gin.Context) { route = routeOf(c) })

	do(t, r, httptest.NewRequest(http.MethodGet, "/pets/42", nil))
	if route != "/pets/:id" {
		t.Fatalf("route=%q", route)
	}
	do(t, r, httptest.NewRequest(http.MethodGet, "/nope/123", nil))
	if route != "unmatched" {
		t.Fatalf("route=%q", route)
	}

	if truncate("abcdef", 3) != "abc…" || truncate("abc", 3) != "abc" || truncate("abc", 0) != "abc" {
		t.Fatal("truncate")
	}
}
