package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-adoption/internal/auth"
)

func init() { gin.SetMode(gin.TestMode) }

// asUser is a stand-in for Authenticate.
func asUser(id string, role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		setIdentity(c, auth.Identity{UserID: id, Role: role})
		c.Next()
	}
}

func do(t *testing.T, r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
