package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cuddly-waffle/account-api/internal/api/shared"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimiterSweepInterval = 5 * time.Minute
	redisKeyPrefix           = "account:ratelimit:"
	redisOpTimeout           = 250 * time.Millisecond
)

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed   bool
	Count     int
	WindowEnd time.Time
}

// Limiter counts hits per key within a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) Decision
	Close() error
}

// MemoryLimiter is a process-local fixed-window Limiter.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]rateState
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

type rateState struct {
	count     int
	windowEnd time.Time
}

// NewMemoryLimiter starts a MemoryLimiter with a background sweep of
// expired windows. Call Close to stop the sweep.
func NewMemoryLimiter() *MemoryLimiter {
	rl := &MemoryLimiter{
		entries: make(map[string]rateState),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Allow implements Limiter.
func (rl *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	state, ok := rl.entries[key]
	if !ok || !now.Before(state.windowEnd) {
		state = rateState{count: 1, windowEnd: now.Add(window)}
		rl.entries[key] = state
		return Decision{Allowed: true, Count: 1, WindowEnd: state.windowEnd}
	}
	if state.count >= limit {
		return Decision{Allowed: false, Count: state.count, WindowEnd: state.windowEnd}
	}
	state.count++
	rl.entries[key] = state
	return Decision{Allowed: true, Count: state.count, WindowEnd: state.windowEnd}
}

func (rl *MemoryLimiter) sweepLoop() {
	ticker := time.NewTicker(rateLimiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup(rl.now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MemoryLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, state := range rl.entries {
		if !now.Before(state.windowEnd) {
			delete(rl.entries, key)
		}
	}
}

// Close stops the sweep goroutine.
func (rl *MemoryLimiter) Close() error {
	rl.once.Do(func() {
		close(rl.stopCh)
	})
	return nil
}

// incrExpireScript increments the counter and starts the window on the
// first hit, atomically.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter is a Limiter shared by every instance pointed at the same
// Redis. It fails open: when Redis is unreachable the request is allowed.
type RedisLimiter struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisLimiter connects to the Redis at redisURL and pings it.
func NewRedisLimiter(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLimiter{
		client: client,
		logger: logger.With("component", "redis_rate_limiter"),
	}, nil
}

// Allow implements Limiter.
func (rl *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	redisKey := redisKeyPrefix + key
	count, err := incrExpireScript.Run(ctx, rl.client, []string{redisKey}, window.Milliseconds()).Int64()
	if err != nil {
		rl.logger.Error("redis rate limiter error", "op", "incr", "error", err)
		return Decision{Allowed: true}
	}

	ttl, err := rl.client.PTTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = window
	}
	return Decision{
		Allowed:   int(count) <= limit,
		Count:     int(count),
		WindowEnd: time.Now().Add(ttl),
	}
}

// Close releases the Redis connection pool.
func (rl *RedisLimiter) Close() error {
	return rl.client.Close()
}

// KeyFunc derives the rate limit key for a request. An empty key falls back
// to the client IP.
type KeyFunc func(r *http.Request) string

// KeyByIP limits by client address.
func KeyByIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		host = "unknown"
	}
	return "ip:" + host
}

// KeyByIPAndEmail limits login attempts per client address and target
// account. The body is restored so the handler can decode it again.
func KeyByIPAndEmail(r *http.Request) string {
	ipKey := KeyByIP(r)
	if r.Body == nil {
		return ipKey
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, shared.MaxBodyBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ipKey
	}

	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) != nil || payload.Email == "" {
		return ipKey
	}
	return ipKey + ":email:" + strings.ToLower(strings.TrimSpace(payload.Email))
}

// RateLimit rejects requests with 429 once a key exceeds limit hits per
// window. A nil limiter or a non-positive limit disables it.
func RateLimit(limiter Limiter, limit int, window time.Duration, keyFn KeyFunc, metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limit <= 0 {
			return next
		}
		if keyFn == nil {
			keyFn = KeyByIP
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				key = KeyByIP(r)
			}

			decision := limiter.Allow(r.Context(), key, limit, window)
			applyRateHeaders(w, limit, decision)
			if !decision.Allowed {
				metrics.recordRateLimitHit(routePattern(r))
				shared.RespondWithError(w, r, http.StatusTooManyRequests, "rate limit exceeded",
					shared.WithErrorCode("rate_limited"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func applyRateHeaders(w http.ResponseWriter, limit int, d Decision) {
	remaining := limit - d.Count
	if remaining < 0 {
		remaining = 0
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if d.WindowEnd.IsZero() {
		return
	}
	reset := int(time.Until(d.WindowEnd).Seconds())
	if reset < 0 {
		reset = 0
	}
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(reset))
	if !d.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(reset))
	}
}
