package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-adoption/internal/http/middleware"
	"github.com/tbourn/go-pet-adoption/internal/services"
)

// ServeFile returns a handler for GET/HEAD /files/*path that serves stored
// uploads through files. Pet images are public. Identity documents need an
// authenticated requester or pet owner and are never cached by shared caches.
func (h *Handlers) ServeFile(files http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref := strings.TrimPrefix(path.Clean("/"+c.Param("path")), "/")
		if services.IsIdentityDocument(ref) {
			id, ok := middleware.IdentityFrom(c)
			if !ok {
				c.Header("WWW-Authenticate", `Bearer realm="api"`)
				fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
				return
			}
			if err := h.requests.AuthorizeDocument(c.Request.Context(), id.UserID, ref); err != nil {
				respondErr(c, err)
				return
			}
			c.Header("Cache-Control", "private, no-store")
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}
