package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/ctxutil"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

func signed(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), "s3cret")
	r := gin.New()
	r.GET("/admin", am.RequireRole(RoleAdmin), func(c *gin.Context) {
		p := ctxutil.GetPrincipal(c.Request.Context())
		if p == nil {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, p.Subject)
	})

	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signed(t, "other", Claims{Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}), http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, "s3cret", Claims{Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}), http.StatusUnauthorized},
		{"student", "Bearer " + signed(t, "s3cret", Claims{Role: "STUDENT", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}), http.StatusForbidden},
		{"admin", "Bearer " + signed(t, "s3cret", Claims{Role: "ROLE_ADMIN", RegisteredClaims: jwt.RegisteredClaims{Subject: "a1", ExpiresAt: exp}}), http.StatusOK},
		{"admin in roles", "Bearer " + signed(t, "s3cret", Claims{Roles: []string{"STUDENT", "admin"}, RegisteredClaims: jwt.RegisteredClaims{Subject: "a2", ExpiresAt: exp}}), http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: want=%d got=%d", tc.name, tc.status, rec.Code)
		}
	}
}

func TestRequireRoleDisabledWithoutSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), " ")
	if am != nil {
		t.Fatalf("blank secret: want nil middleware")
	}
	r := gin.New()
	r.GET("/admin", am.RequireRole(RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: want=204 got=%d", rec.Code)
	}
}
