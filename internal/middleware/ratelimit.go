package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware counts requests per caller in fixed windows. Mounted
// after AuthMiddleware it keys callers by user id, otherwise by IP.
func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil || limit <= 0 {
			return c.Next()
		}

		key := rateLimitKey(c)

		ctx := c.UserContext()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			return c.Next() // fail open
		}

		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			return Abort(c, fiber.StatusTooManyRequests, "rate limit exceeded")
		}

		return c.Next()
	}
}

func rateLimitKey(c *fiber.Ctx) string {
	if id := GetUserID(c); id != "" {
		return fmt.Sprintf("rl:%s:user:%s", c.Path(), id)
	}
	return fmt.Sprintf("rl:%s:ip:%s", c.Path(), c.IP())
}
