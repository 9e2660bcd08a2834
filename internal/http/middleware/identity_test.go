package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-adoption/internal/auth"
)

func whoami(c *gin.Context) {
	id, ok := IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"anonymous": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": id.UserID, "role": string(id.Role), "key": c.GetString(UserIDKey)})
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("json: %v (%s)", err, w.Body.String())
	}
	return m
}

func TestAuthenticate_BearerToken(t *testing.T) {
	v := auth.NewHMACVerifier("test-secret", "")
	token, err := v.Sign(auth.Identity{UserID: "u-7", Role: auth.RoleAdmin}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	r := gin.New()
	r.Use(Authenticate(v, false))
	r.GET("/me", whoami)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := do(t, r, req)
	body := decode(t, w)
	if w.Code != http.StatusOK || body["user"] != "u-7" || body["role"] != "admin" || body["key"] != "u-7" {
		t.Fatalf("unexpected %d %v", w.Code, body)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = do(t, r, req)
	if w.Code != http.StatusUnauthorized || decode(t, w)["code"] != "unauthorized" {
		t.Fatalf("invalid token: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Fatal("missing WWW-Authenticate")
	}

	// Dev headers are ignored unless enabled.
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(HeaderUserID, "spoofed")
	if body := decode(t, do(t, r, req)); body["anonymous"] != true {
		t.Fatalf("dev header honoured while disabled: %v", body)
	}
}

func TestAuthenticate_DevHeaders(t *testing.T) {
	r := gin.New()
	r.Use(Authenticate(nil, true))
	r.GET("/me", whoami)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(HeaderUserID, " u-1 ")
	req.Header.Set(HeaderUserRole, "ADMIN")
	body := decode(t, do(t, r, req))
	if body["user"] != "u-1" || body["role"] != "admin" {
		t.Fatalf("unexpected %v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(HeaderUserID, "u-2")
	if body := decode(t, do(t, r, req)); body["role"] != "user" {
		t.Fatalf("role should default to user: %v", body)
	}

	// Bearer without a verifier falls through to headers.
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	if body := decode(t, do(t, r, req)); body["anonymous"] != true {
		t.Fatalf("unexpected %v", body)
	}
}

type failingVerifier struct{}

func (failingVerifier) Verify(string) (auth.Identity, error) {
	return auth.Identity{}, errors.New("nope")
}

func TestRequireIdentity_And_RequireAdmin(t *testing.T) {
	r := gin.New()
	r.Use(Authenticate(failingVerifier{}, true))
	r.GET("/private", RequireIdentity(), whoami)
	r.GET("/admin", RequireAdmin(), whoami)

	cases := []struct {
		path, user, role string
		want             int
	}{
		{"/private", "", "", http.StatusUnauthorized},
		{"/private", "u-1", "", http.StatusOK},
		{"/admin", "", "", http.StatusUnauthorized},
		{"/admin", "u-1", "user", http.StatusForbidden},
		{"/admin", "u-1", "admin", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.user != "" {
			req.Header.Set(HeaderUserID, tc.user)
			req.Header.Set(HeaderUserRole, tc.role)
		}
		if w := do(t, r, req); w.Code != tc.want {
			t.Errorf("%s as %q/%q: status %d, want %d", tc.path, tc.user, tc.role, w.Code, tc.want)
		}
	}
}

func TestBearerToken(t *testing.T) {
	for in, want := range map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	} {
		if got := bearerToken(in); got != want {
			t.Errorf("bearerToken(%q) = %q, want %q", in, got, want)
		}
	}
}
