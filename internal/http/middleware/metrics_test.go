package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsByRoute(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.POST("/pets/:id/things", func(c *gin.Context) { c.String(http.StatusCreated, "ok") })

	ok := httpRequests.WithLabelValues(http.MethodPost, "/pets/:id/things", "201")
	unmatched := httpRequests.WithLabelValues(http.MethodGet, "unmatched", "404")
	before, beforeMiss := testutil.ToFloat64(ok), testutil.ToFloat64(unmatched)

	for _, id := range []string{"1", "2"} {
		req := httptest.NewRequest(http.MethodPost, "/pets/"+id+"/things", strings.NewReader("payload"))
		do(t, r, req)
	}
	do(t, r, httptest.NewRequest(http.MethodGet, "/random/path", nil))

	if got := testutil.ToFloat64(ok) - before; got != 2 {
		t.Fatalf("route counter delta=%v", got)
	}
	if got := testutil.ToFloat64(unmatched) - beforeMiss; got != 1 {
		t.Fatalf("unmatched counter delta=%v", got)
	}
	if testutil.ToFloat64(httpInflight) != 0 {
		t.Fatal("inflight gauge not restored")
	}
	if n := testutil.CollectAndCount(httpRequestSize); n == 0 {
		t.Fatal("request size not observed")
	}
}
