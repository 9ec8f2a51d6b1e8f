package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/http/response"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/apierr"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/ctxutil"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

const RoleAdmin = "ADMIN"

// Claims is the subset of the platform token this service reads. Tokens are
// issued by the auth service.
type Claims struct {
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) HasRole(role string) bool {
	if strings.EqualFold(strings.TrimPrefix(c.Role, "ROLE_"), role) {
		return true
	}
	for _, r := range c.Roles {
		if strings.EqualFold(strings.TrimPrefix(r, "ROLE_"), role) {
			return true
		}
	}
	return false
}

type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

// NewAuthMiddleware returns nil when secret is empty; a nil *AuthMiddleware
// lets every request through.
func NewAuthMiddleware(log *logger.Logger, secret string) *AuthMiddleware {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil
	}
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), secret: []byte(secret)}
}

// RequireRole rejects requests without a valid HS256 bearer token carrying
// role.
func (am *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	if am == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			response.Fail(c, apierr.Unauthorized(nil))
			return
		}
		claims, err := am.parse(tokenString)
		if err != nil {
			am.log.Debug("Token rejected", "error", err)
			response.Fail(c, apierr.Unauthorized(nil))
			return
		}
		if !claims.HasRole(role) {
			response.Fail(c, apierr.Forbidden(nil))
			return
		}
		ctx := ctxutil.WithPrincipal(c.Request.Context(), &ctxutil.Principal{
			Subject: claims.Subject,
			Role:    role,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return am.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
