// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the acting principal. Authentication itself belongs to an
// external identity provider; the API only verifies the bearer token it
// issued and passes the resulting identity explicitly to every service call.
//
//   - Authenticate() reads "Authorization: Bearer <token>" and, when dev
//     headers are enabled, X-User-ID / X-User-Role. A present but invalid
//     token is rejected with 401; a missing one leaves the request anonymous.
//   - RequireIdentity() rejects anonymous requests with 401.
//   - RequireAdmin() rejects non-admins with 403.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-adoption/internal/auth"
)

const (
	identityKey = "identity"

	// UserIDKey holds the acting user id as a plain string, for code that
	// only needs the id (rate limiting, logging).
	UserIDKey = "userID"

	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// TokenVerifier turns a bearer token into an identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Authenticate attaches the caller's identity when one is presented. A nil
// verifier disables bearer tokens.
func Authenticate(verifier TokenVerifier, devHeaders bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c.GetHeader("Authorization")); token != "" && verifier != nil {
			id, err := verifier.Verify(token)
			if err != nil {
				LoggerFrom(c).Debug().Err(err).Msg("bearer token rejected")
				abortUnauthorized(c, "invalid or expired token")
				return
			}
			setIdentity(c, id)
			c.Next()
			return
		}
		if devHeaders {
			if uid := strings.TrimSpace(c.GetHeader(HeaderUserID)); uid != "" {
				setIdentity(c, auth.Identity{UserID: uid, Role: auth.ParseRole(c.GetHeader(HeaderUserRole))})
			}
		}
		c.Next()
	}
}

// RequireIdentity aborts with 401 unless Authenticate attached an identity.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFrom(c); !ok {
			abortUnauthorized(c, "authentication required")
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts with 401 for anonymous callers and 403 for non-admins.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			abortUnauthorized(c, "authentication required")
			return
		}
		if !id.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "forbidden",
				"message":    "admin role required",
			})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity attached by Authenticate.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok && id.UserID != ""
}

func setIdentity(c *gin.Context, id auth.Identity) {
	c.Set(identityKey, id)
	c.Set(UserIDKey, id.UserID)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": RequestIDFrom(c),
		"code":       "unauthorized",
		"message":    msg,
	})
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
