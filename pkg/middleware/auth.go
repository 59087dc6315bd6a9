package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ClaimsKey  = "claims"
	SubjectKey = "subject"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authenticate verifies the bearer token and stores its claims and subject
// on c. On failure it returns the error body to send.
func authenticate(c *gin.Context, ver Verifier) gin.H {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return gin.H{"error": "missing Authorization header"}
	}
	token, ok := bearerToken(auth)
	if !ok {
		return gin.H{"error": "invalid Authorization header"}
	}

	verified, err := ver.Verify(c.Request.Context(), token)
	if err != nil {
		return gin.H{"error": "invalid token", "details": err.Error()}
	}

	var claims map[string]interface{}
	if err := verified.Claims(&claims); err != nil {
		return gin.H{"error": "failed to parse claims"}
	}

	c.Set(ClaimsKey, claims)
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		c.Set(SubjectKey, sub)
	}
	return nil
}

// IdentifyMiddleware attaches claims for a valid bearer token but never
// rejects. Mount it before rate limiting so limits key by subject.
func IdentifyMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			_ = authenticate(c, ver)
		}
		c.Next()
	}
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the provided verifier
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ClaimsKey); ok {
			c.Next()
			return
		}
		if body := authenticate(c, ver); body != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, body)
			return
		}
		c.Next()
	}
}
