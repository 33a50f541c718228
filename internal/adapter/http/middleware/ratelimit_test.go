package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"custodial-wallet/internal/adapter/http/middleware"
	redisStore "custodial-wallet/internal/adapter/storage/redis"
	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/internal/core/ports/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type rejectCounter map[string]int

func (r rejectCounter) ObserveRateLimited(group string) { r[group]++ }

func newStore(t *testing.T) *redisStore.RateLimitStore {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redisStore.NewRateLimitStore(client)
}

// setupRateLimitRouter stores a user session for the X-Test-User header, so
// the limiter keys by principal.
func setupRateLimitRouter(limiter ports.RateLimiter, obs middleware.RateLimitObserver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute}
	log := zerolog.Nop()

	withSession := func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(middleware.CtxSession, &ports.Session{
				Principal: ports.Principal{Kind: domain.PrincipalUser, ID: uuid.MustParse(id)},
			})
		}
		c.Next()
	}
	r.GET("/test", withSession, middleware.RateLimiter(limiter, "test", rule, obs, log), func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}

func get(router *gin.Engine, user string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), "GET", "/test", nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	router := setupRateLimitRouter(newStore(t), nil)

	for i := 0; i < 3; i++ {
		w := get(router, "")
		assert.Equal(t, 200, w.Code, "request %d should succeed", i+1)
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	obs := rejectCounter{}
	router := setupRateLimitRouter(newStore(t), obs)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, get(router, "").Code)
	}

	w := get(router, "")
	assert.Equal(t, 429, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_001")
	assert.Equal(t, 1, obs["test"])
}

func TestRateLimiter_KeysByPrincipal(t *testing.T) {
	router := setupRateLimitRouter(newStore(t), nil)
	alice := uuid.NewString()
	bob := uuid.NewString()

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, get(router, alice).Code)
	}
	assert.Equal(t, 429, get(router, alice).Code)

	// independent counter
	assert.Equal(t, 200, get(router, bob).Code)
}

func TestRateLimiter_DegradedModeAllows(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	limiter := mocks.NewMockRateLimiter(ctrl)
	limiter.EXPECT().Allow(gomock.Any(), gomock.Any(), int64(3), time.Minute).
		Return(nil, errors.New("redis down")).Times(5)

	router := setupRateLimitRouter(limiter, nil)
	for i := 0; i < 5; i++ {
		w := get(router, "")
		assert.Equal(t, 200, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestDefaultRateLimitRules(t *testing.T) {
	rules := middleware.DefaultRateLimitRules()
	assert.Equal(t, int64(10), rules["auth_login"].Limit)
	assert.Equal(t, int64(5), rules["auth_register"].Limit)
	assert.Equal(t, time.Hour, rules["auth_register"].Window)
	assert.Equal(t, int64(10), rules["admin_login"].Limit)
	assert.Equal(t, int64(20), rules["wallet_send"].Limit)
}
