package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gameserver/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateWindow = time.Minute

// подмножество redis-клиента, которое нужно лимитеру
type counterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimiter - счетчик запросов в минутном окне на redis, общий для всех инстансов
type RateLimiter struct {
	rdb   counterStore
	limit int
	now   func() time.Time
}

func NewRateLimiter(rdb counterStore, limitPerMin int) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: limitPerMin, now: time.Now}
}

// Middleware ограничивает запросы по пользователю (или по IP до авторизации).
// При недоступном redis запросы пропускаются.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rdb == nil || l.limit <= 0 {
			c.Next()
			return
		}

		subject := c.ClientIP()
		if uid, ok := c.Get(CtxUserID); ok {
			subject = fmt.Sprint(uid)
		}
		window := l.now().Truncate(rateWindow).Unix()
		key := "ratelimit:" + subject + ":" + strconv.FormatInt(window, 10)

		ctx := c.Request.Context()
		n, err := l.rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if n == 1 {
			if err := l.rdb.Expire(ctx, key, rateWindow).Err(); err != nil {
				logger.Warn("rate limiter expire failed", "key", key, "error", err)
			}
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		if remaining := int64(l.limit) - n; remaining >= 0 {
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		} else {
			c.Header("X-RateLimit-Remaining", "0")
		}

		if n > int64(l.limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
