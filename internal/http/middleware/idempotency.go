// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key support for unsafe requests such as
// submitting an adoption request. A client that retries a submission with
// the same key gets the request it already created instead of a duplicate
// pending conflict.
//
// The middleware validates the key, stashes it, and asks a lookup whether a
// live record exists for (user, route, key). On a hit it marks the request as
// a replay, records the resource id, and lets the rate limiter skip it.
// Handlers serve the replay and record new results; the middleware never
// caches bodies.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the key.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed is set to "true" on responses served from a
// previous result.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

const (
	ctxKeyIdemKey      = "idem.key"
	ctxKeyIdemResource = "idem.resource"
	ctxKeyRateBypass   = "rate.bypass"
)

// IdempotencyLookup reports the resource created by a previous request with
// the same (userID, scope, key) that is still within its TTL. found=false
// with a nil error means no record.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (resourceID string, found bool, err error)

// IdempotencyOptions configures key validation.
type IdempotencyOptions struct {
	// MaxLen caps the key length; <= 0 means 200.
	MaxLen int
	// Pattern restricts the key alphabet; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// Idempotency validates the Idempotency-Key header and detects replays. It
// must run after Authenticate, since keys are scoped per user; anonymous
// requests are never looked up. Lookup failures are logged and treated as a
// miss.
func Idempotency(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_request",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		id, ok := IdentityFrom(c)
		if !ok || lookup == nil {
			c.Next()
			return
		}
		resourceID, found, err := lookup(c.Request.Context(), id.UserID, IdempotencyScope(c), key, now().UTC())
		switch {
		case err != nil:
			LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
		case found:
			c.Set(ctxKeyIdemResource, resourceID)
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}
}

// IdempotencyScope is the scope keys are recorded under: the method and
// registered route, so one key can be reused across endpoints.
func IdempotencyScope(c *gin.Context) string {
	return c.Request.Method + " " + routeOf(c)
}

// GetIdempotencyKey returns the validated key, if the request carried one.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// ReplayOf returns the resource id recorded for this key when the request is
// a replay.
func ReplayOf(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemResource)
	return s, s != ""
}
