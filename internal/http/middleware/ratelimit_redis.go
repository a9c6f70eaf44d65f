package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"coinflip3d/internal/logger"
	"coinflip3d/internal/waitfor"
)

var redisClient *redis.Client

const redisOpTimeout = 500 * time.Millisecond

// InitRedisRateLimiter connects the shared client used by the limiters,
// polling until redis answers. If it never does the client stays nil and
// the limiters fail open.
func InitRedisRateLimiter(ctx context.Context, addr, password string, db, attempts int, interval time.Duration) error {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	err := waitfor.Poll(ctx, attempts, interval, func(ctx context.Context) bool {
		pingCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err() == nil
	})
	if err != nil {
		_ = client.Close()
		return err
	}
	redisClient = client
	return nil
}

func RedisEnabled() bool {
	return redisClient != nil
}

func PingRedis(ctx context.Context) error {
	if redisClient == nil {
		return nil
	}
	return redisClient.Ping(ctx).Err()
}

func CloseRedis() {
	if redisClient != nil {
		_ = redisClient.Close()
		redisClient = nil
	}
}

// RedisRateLimit is a fixed-window limiter per client IP using INCR/EXPIRE.
// key format: rl:<window_seconds>:<ip>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		limit(c, key, c.FullPath(), maxRequests, window, "X-RateLimit")
	}
}

// PlayerRateLimit limits per authenticated player rather than per IP. It
// must run after JWT.
func PlayerRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := c.GetInt64(PlayerKey)
		if playerID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		key := "flip_rl:" + strconv.FormatInt(playerID, 10) + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		limit(c, key, "player:"+c.FullPath(), maxRequests, window, "X-FlipRateLimit")
	}
}

func limit(c *gin.Context, key, endpoint string, maxRequests int, window time.Duration, header string) {
	if redisClient == nil {
		// not configured, fail-open
		c.Next()
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), redisOpTimeout)
	defer cancel()

	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		// on Redis error, fail-open but say so
		logger.Warn("rate limiter: redis error", "error", err)
		c.Header(header+"-Error", "redis-error")
		c.Next()
		return
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}

	c.Header(header+"-Limit", strconv.Itoa(maxRequests))
	c.Header(header+"-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

	if val > int64(maxRequests) {
		RLBlocked.WithLabelValues(endpoint).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return
	}

	RLRequests.WithLabelValues(endpoint).Inc()
	c.Next()
}
