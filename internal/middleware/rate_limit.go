package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "rl:write:"

// WriteRateLimit caps statement writes per account per minute using a Redis
// counter keyed by the external key header, falling back to the client IP.
// Without Redis, or when Redis errors, requests pass through.
func WriteRateLimit(cache *redis.Client, keyHeader string, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 60
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		subject := strings.TrimSpace(c.Get(keyHeader))
		if subject == "" {
			subject = c.IP()
		}
		key := rateLimitPrefix + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many statement writes, try again later")
		}
		return c.Next()
	}
}
