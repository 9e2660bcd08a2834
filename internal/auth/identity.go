// Package auth verifies the identity of the acting user. Sessions and token
// issuance live in an external identity provider; this package only checks
// HS256 bearer tokens and turns them into an Identity.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the coarse role of a principal. It only gates admin monitoring;
// adoption decisions are authorised by ownership.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps free text to a Role, defaulting to RoleUser.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// Identity is the acting principal.
type Identity struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal may use admin monitoring endpoints.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims issued by the identity provider. The user id is
// the standard subject claim.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// HMACVerifier verifies HS256 tokens with a shared secret.
type HMACVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewHMACVerifier returns a verifier. An empty issuer disables the iss check.
func NewHMACVerifier(secret, issuer string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret), issuer: issuer, leeway: 30 * time.Second}
}

// Verify parses and validates token and returns the identity it carries.
func (v *HMACVerifier) Verify(token string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.Subject, Role: ParseRole(string(claims.Role))}, nil
}

// Sign issues a token for id valid for ttl. The service itself never hands
// out tokens; Sign exists for tooling and tests.
func (v *HMACVerifier) Sign(id Identity, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}
