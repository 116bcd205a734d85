package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns a fixed-window rate limiter keyed by client IP and
// route, backed by Redis so the limit holds across replicas. At most limit
// requests are allowed per window. When no Redis client is configured, or
// Redis errors mid-request, the middleware lets traffic through: the
// limiter protects the booking endpoint from bursts, it must never become
// the reason bookings fail.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	if rdb == nil || limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	// INCR + EXPIRE on first hit, atomically.
	script := redis.NewScript(`
		local n = redis.call('INCR', KEYS[1])
		if n == 1 then
			redis.call('PEXPIRE', KEYS[1], ARGV[1])
		end
		return n
	`)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "rl:" + c.Path() + ":" + c.RealIP()
			n, err := script.Run(c.Request().Context(), rdb,
				[]string{key}, window.Milliseconds()).Int64()
			if err != nil {
				c.Logger().Warnf("ratelimit: redis error for %s: %v", key, err)
				return next(c)
			}
			if n > int64(limit) {
				c.Response().Header().Set("Retry-After",
					strconv.Itoa(int(window/time.Second)))
				return c.JSON(http.StatusTooManyRequests,
					echo.Map{"erro": "muitas requisições, tente novamente em instantes"})
			}
			return next(c)
		}
	}
}
