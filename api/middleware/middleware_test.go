package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anoixa/image-craft/internal/auth"
	"github.com/anoixa/image-craft/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type fakeParser map[string]*auth.Identity

func (f fakeParser) ParseToken(token string) (*auth.Identity, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		id, _ := UserID(c)
		role, _ := Role(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "role": role})
	})
	return r
}

func get(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	parser := fakeParser{
		"good":  {UserID: 3, Role: auth.RoleUser},
		"staff": {UserID: 4, Role: auth.RoleStaff},
	}
	r := newEngine(JWTAuth(parser))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"no token", "Bearer", http.StatusBadRequest},
		{"wrong scheme", "ApiKey good", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, get(r, tt.header).Code)
		})
	}

	w := get(r, "Bearer staff")
	assert.JSONEq(t, `{"user_id": 4, "role": "staff"}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	parser := fakeParser{
		"user":  {UserID: 1, Role: auth.RoleUser},
		"staff": {UserID: 2, Role: auth.RoleStaff},
	}
	r := newEngine(JWTAuth(parser), RequireRole(auth.RoleStaff))

	assert.Equal(t, http.StatusForbidden, get(r, "Bearer user").Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer staff").Code)

	bare := newEngine(RequireRole(auth.RoleStaff))
	assert.Equal(t, http.StatusForbidden, get(bare, "").Code)
}

func TestIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(0.0001, 2, time.Minute)
	defer rl.StopCleanup()

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	rl.evictBefore(time.Now().Add(time.Second))
	assert.True(t, rl.Allow("1.1.1.1"))

	rl.StopCleanup()
}

func TestIPRateLimiterMiddleware(t *testing.T) {
	rl := NewIPRateLimiter(0.0001, 1, time.Minute)
	defer rl.StopCleanup()
	r := newEngine(rl.Middleware())

	assert.Equal(t, http.StatusOK, get(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "").Code)
}

func TestConcurrencyLimiter(t *testing.T) {
	cl := NewConcurrencyLimiter(1)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(cl.Middleware())

	entered := make(chan struct{})
	release := make(chan struct{})
	r.GET("/slow", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	done := make(chan int)
	go func() {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
		done <- w.Code
	}()
	<-entered

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	close(release)
	assert.Equal(t, http.StatusOK, <-done)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New()
	r := newEngine(Metrics(m))

	get(r, "")
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	n, err := testutil.GatherAndCount(m.Registry(), "imagecraft_http_requests_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := get(r, "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
