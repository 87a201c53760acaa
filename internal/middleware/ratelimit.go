package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit enforces a fixed-window limit per client and route backed
// by Redis.  Authenticated clients are keyed by user ID, anonymous
// ones by IP.  Redis errors fail open so a broker outage never takes
// the API down.  A nil client or non-positive limit disables the
// middleware.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	if rdb == nil || limit <= 0 {
		return passthrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := rateKey(c, window)

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, window).Err()
			}

			remaining := int64(limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(limit) {
				ttl, err := rdb.TTL(ctx, key).Result()
				if err != nil || ttl < 0 {
					ttl = window
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}

func rateKey(c echo.Context, window time.Duration) string {
	who := c.RealIP()
	if uid := UserID(c); uid != 0 {
		who = strconv.FormatUint(uid, 10)
	}
	// Bucket the clock so each window gets its own counter.
	bucket := time.Now().Unix() / int64(window.Seconds())
	return fmt.Sprintf("rl:%s:%s:%d", who, c.Path(), bucket)
}
