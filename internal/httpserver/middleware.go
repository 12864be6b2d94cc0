package httpserver

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"latthi-storefront/internal/docstore"
	cartsvc "latthi-storefront/internal/service/cart"
)

const (
	headerUserID      = "X-User-ID"
	headerCartSession = "X-Cart-Session"
)

type ctxKey string

const (
	userCtxKey    ctxKey = "userID"
	sessionCtxKey ctxKey = "cartSession"
)

// userMiddleware takes the caller's user id from the auth layer in front of
// the API.
func userMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(headerUserID))
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("sign in to continue"))
			return
		}
		if !docstore.ValidID(uid) {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("malformed user id"))
			return
		}
		ctx := context.WithValue(c.Request.Context(), userCtxKey, uid)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// cartSessionMiddleware reads the cart session header. When required, a
// missing header is a 400.
func cartSessionMiddleware(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := strings.TrimSpace(c.GetHeader(headerCartSession))
		if session == "" && required {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(headerCartSession+" header required"))
			return
		}
		if len(session) > cartsvc.MaxSessionLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("cart session too long"))
			return
		}
		ctx := context.WithValue(c.Request.Context(), sessionCtxKey, session)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// adminMiddleware checks the bearer token. An empty token leaves /admin open,
// which is only meant for local development. Browsers cannot set headers on
// websocket upgrades, so ?token= is accepted as well.
func adminMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if got == "" || got == c.GetHeader("Authorization") {
			got = c.Query("token")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("admin token required"))
			return
		}
		c.Next()
	}
}

func userFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(userCtxKey).(string)
	return uid
}

func sessionFromContext(ctx context.Context) string {
	s, _ := ctx.Value(sessionCtxKey).(string)
	return s
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter hands each client IP its own token bucket. Idle buckets are
// swept on access instead of by a goroutine per client.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiter(perMinute int, idle time.Duration) *rateLimiter {
	if perMinute <= 0 {
		return nil
	}
	burst := perMinute / 6
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		idle:     idle,
		now:      time.Now,
	}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > rl.idle {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.idle {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (rl *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil {
			c.Next()
			return
		}
		if !rl.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody("too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}
