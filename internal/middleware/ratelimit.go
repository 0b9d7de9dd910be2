package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/revature/expense-manager/internal/config"
)

// bucketScript refills the bucket stored at KEYS[1] by whole intervals,
// takes one token when available and returns {allowed, remaining,
// retry_after_ms}.
//
// ARGV: now_ms, capacity, refill_tokens, interval_ms, ttl_seconds.
var bucketScript = redis.NewScript(`
local now, cap, refill, interval, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local st = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill_ms')
local tokens, last = tonumber(st[1]), tonumber(st[2])
if tokens == nil or last == nil then
	tokens, last = cap, now
end
local n = math.floor(math.max(0, now - last) / interval)
if n > 0 then
	tokens = math.min(cap, tokens + n * refill)
	last = last + n * interval
end
local ok, wait = 0, 0
if tokens > 0 then
	ok, tokens = 1, tokens - 1
else
	wait = math.max(0, interval - (now - last))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_refill_ms', last)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

// bucketResult is the decoded reply of bucketScript.
type bucketResult struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

// parseBucketResult decodes the script reply.  Lua numbers come back from
// go-redis as int64.
func parseBucketResult(v interface{}) (bucketResult, bool) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 3 {
		return bucketResult{}, false
	}
	var nums [3]int64
	for i, x := range arr {
		n, ok := x.(int64)
		if !ok {
			return bucketResult{}, false
		}
		nums[i] = n
	}
	return bucketResult{allowed: nums[0] == 1, remaining: nums[1], retry: time.Duration(nums[2]) * time.Millisecond}, true
}

// loginKey buckets attempts per client address and route.
func loginKey(prefix string, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return prefix + ":" + ip + ":" + c.Request().Method + " " + c.Path()
}

// NewTokenBucket limits login attempts per client address with a token
// bucket kept in Redis.  When Redis is unavailable the limiter fails open.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := loginKey(cfg.Prefix, c)
			reply, err := bucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), cfg.Capacity, cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(), int64(cfg.TTL/time.Second)).Result()
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("ratelimit: redis error")
				return next(c)
			}
			res, ok := parseBucketResult(reply)
			if !ok {
				log.Warn().Str("key", key).Interface("reply", reply).Msg("ratelimit: unexpected script reply")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
			if res.allowed {
				return next(c)
			}

			secs := int(math.Ceil(res.retry.Seconds()))
			h.Set("Retry-After", strconv.Itoa(secs))
			if cfg.Debug {
				log.Info().Str("key", key).Dur("retry", res.retry).Msg("ratelimit: blocked")
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"success":     false,
				"error":       "Too many requests",
				"retry_after": secs,
			})
		}
	}
}
