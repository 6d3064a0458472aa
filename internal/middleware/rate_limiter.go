package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/myshagun/backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// bannedIPsKey is a Redis set maintained by operators (SADD/SREM banned_ips <ip>).
const bannedIPsKey = "banned_ips"

const defaultLocalLimiterSize = 10000

// RateLimiterConfig defines rate limiting rules
type RateLimiterConfig struct {
	MaxRequests int           // Maximum requests allowed in the window
	Window      time.Duration // Time window (e.g., 1 minute)
	BlockTime   time.Duration // How long a limited client is told to wait

	// LocalLimiterSize caps the per-IP fallback buckets; least recently seen IPs
	// are evicted first. Zero means 10000.
	LocalLimiterSize int
}

// RateLimiter counts requests per client IP in Redis. While Redis is unreachable a
// per-process token bucket per IP takes over.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimiterConfig

	mu    sync.Mutex
	local *lru.Cache[string, *rate.Limiter]
}

func NewRateLimiter(redisClient *redis.Client, config RateLimiterConfig) *RateLimiter {
	if config.LocalLimiterSize <= 0 {
		config.LocalLimiterSize = defaultLocalLimiterSize
	}
	// lru.New only fails for a non-positive size.
	local, _ := lru.New[string, *rate.Limiter](config.LocalLimiterSize)
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		local:  local,
	}
}

// Middleware returns a Gin middleware function for rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := c.ClientIP()

		if banned, _ := rl.IsIPBanned(ctx, clientIP); banned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Your IP address has been banned",
			})
			return
		}

		allowed, retryAfter, err := rl.CheckLimit(ctx, clientIP)
		if err != nil {
			logger.Log.Warn("Redis rate limit check failed, using local limiter",
				zap.String("ip", clientIP),
				zap.Error(err),
			)
			allowed, retryAfter = rl.checkLocal(clientIP)
		}

		if !allowed {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Please try again later.",
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}

// CheckLimit is a fixed window counter: INCR, with EXPIRE set by the first hit.
func (rl *RateLimiter) CheckLimit(ctx context.Context, ip string) (bool, time.Duration, error) {
	key := fmt.Sprintf("ratelimit:%s", ip)

	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}

	if count == 1 {
		if err := rl.redis.Expire(ctx, key, rl.config.Window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count > int64(rl.config.MaxRequests) {
		ttl, err := rl.redis.TTL(ctx, key).Result()
		if err != nil || ttl <= 0 {
			ttl = rl.config.Window
		}
		if rl.config.BlockTime > ttl {
			// Keep the counter alive so the client stays limited for the block time.
			rl.redis.Expire(ctx, key, rl.config.BlockTime)
			ttl = rl.config.BlockTime
		}
		return false, ttl, nil
	}

	return true, 0, nil
}

// checkLocal spreads MaxRequests evenly over Window with a burst of MaxRequests.
func (rl *RateLimiter) checkLocal(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	limiter, ok := rl.local.Get(ip)
	if !ok {
		every := rate.Every(rl.config.Window / time.Duration(max(rl.config.MaxRequests, 1)))
		limiter = rate.NewLimiter(every, max(rl.config.MaxRequests, 1))
		rl.local.Add(ip, limiter)
	}
	rl.mu.Unlock()

	reservation := limiter.Reserve()
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) IsIPBanned(ctx context.Context, ip string) (bool, error) {
	return rl.redis.SIsMember(ctx, bannedIPsKey, ip).Result()
}
