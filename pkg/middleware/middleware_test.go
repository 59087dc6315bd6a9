package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/lastutorials/pdfsplit/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	if raw == "goodtoken" {
		return &fakeToken{data: map[string]interface{}{"sub": "user1", "email": "test@example.com"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func serve(g *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, h := range []string{"", "BadHeader", "Bearer ", "Basic goodtoken", "Bearer badtoken"} {
		require.Equal(t, http.StatusUnauthorized, serve(g, h).Code, h)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		claims, ok := c.Get(ClaimsKey)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"claims": claims, "subject": c.GetString(SubjectKey)})
	})

	rw := serve(g, "bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Contains(t, got, "claims")
	require.Equal(t, "user1", got["subject"])
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2))
	r.GET("/", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))
	require.Equal(t, http.StatusOK, serve(r, "").Code)
	require.Equal(t, http.StatusOK, serve(r, "").Code)
	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(0.001, 1))
	r.GET("/", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, "").Code)
	rw := serve(r, "")
	require.Equal(t, http.StatusTooManyRequests, rw.Code)
	require.Equal(t, "1", rw.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_KeysBySubject(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(SubjectKey, c.GetHeader("Authorization"))
		c.Next()
	})
	r.Use(RateLimitMiddleware(0.001, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, serve(r, "alice").Code)
	require.Equal(t, http.StatusOK, serve(r, "bob").Code)
	require.Equal(t, http.StatusTooManyRequests, serve(r, "alice").Code)
}

func TestIdentifyMiddleware_SetsSubjectWithoutRejecting(t *testing.T) {
	r := gin.New()
	r.Use(IdentifyMiddleware(&fakeVerifier{}))
	r.Use(RateLimitMiddleware(0.001, 1))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(SubjectKey)) })

	rw := serve(r, "Bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, "user1", rw.Body.String())

	// an invalid token is not rejected here; it falls back to the IP bucket
	rw = serve(r, "Bearer badtoken")
	require.Equal(t, http.StatusOK, rw.Code)
	require.Empty(t, rw.Body.String())

	require.Equal(t, http.StatusTooManyRequests, serve(r, "Bearer goodtoken").Code)
	require.Equal(t, http.StatusTooManyRequests, serve(r, "").Code)
}

func TestAuthMiddleware_ReusesIdentifiedClaims(t *testing.T) {
	calls := 0
	ver := verifierFunc(func(ctx context.Context, raw string) (Token, error) {
		calls++
		return (&fakeVerifier{}).Verify(ctx, raw)
	})
	r := gin.New()
	r.Use(IdentifyMiddleware(ver))
	r.GET("/", AuthMiddleware(ver), func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, serve(r, "Bearer goodtoken").Code)
	require.Equal(t, 1, calls)
	require.Equal(t, http.StatusUnauthorized, serve(r, "Bearer badtoken").Code)
}

type verifierFunc func(ctx context.Context, raw string) (Token, error)

func (f verifierFunc) Verify(ctx context.Context, raw string) (Token, error) { return f(ctx, raw) }

func TestRedisRateLimitMiddleware_Basic(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	fixed := time.Unix(1_700_000_000, 0)
	now = func() time.Time { return fixed }
	defer func() { now = time.Now }()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	r := gin.New()
	r.Use(RedisRateLimitMiddleware(client, 1, 0, time.Second))
	r.GET("/", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, "").Code)
	require.Equal(t, http.StatusTooManyRequests, serve(r, "").Code)

	// bucket key expires once the window passes
	m.FastForward(3 * time.Second)
	require.Equal(t, http.StatusOK, serve(r, "").Code)
}

func TestRedisRateLimitMiddleware_RedisDown(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	m.Close()

	r := gin.New()
	r.Use(RedisRateLimitMiddleware(client, 1, 0, time.Second))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	require.Equal(t, http.StatusInternalServerError, serve(r, "").Code)
}

func TestRedisRateLimitMiddleware_NilClientFallsBack(t *testing.T) {
	r := gin.New()
	r.Use(RedisRateLimitMiddleware(nil, 0.001, 1, time.Second))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	require.Equal(t, http.StatusOK, serve(r, "").Code)
	require.Equal(t, http.StatusTooManyRequests, serve(r, "").Code)
}
