package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-client token bucket. Clients are keyed by
// remote IP; idle buckets are evicted after a few minutes so the map does
// not grow without bound.
type RateLimiter struct {
	enabled bool
	rps     float64
	burst   int

	mu      sync.Mutex
	clients map[string]*clientLimiter

	sweeper *time.Ticker
	done    chan struct{}
	stop    sync.Once
}

// NewRateLimiter creates a rate limiter from configuration. When rate
// limiting is disabled the middleware is a no-op passthrough and no sweep
// goroutine runs.
func NewRateLimiter(cfg *viper.Viper) *RateLimiter {
	rl := &RateLimiter{
		enabled: cfg.GetBool("ratelimit.enabled"),
		rps:     cfg.GetFloat64("ratelimit.requests_per_second"),
		burst:   cfg.GetInt("ratelimit.burst"),
		clients: make(map[string]*clientLimiter),
		done:    make(chan struct{}),
	}
	if rl.rps <= 0 {
		rl.rps = 20
	}
	if rl.burst <= 0 {
		rl.burst = 40
	}

	if rl.enabled {
		rl.sweeper = time.NewTicker(time.Minute)
		go rl.sweep()
	}
	return rl
}

func (rl *RateLimiter) sweep() {
	for {
		select {
		case <-rl.sweeper.C:
			rl.mu.Lock()
			for ip, client := range rl.clients {
				if time.Since(client.lastSeen) > 3*time.Minute {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

// Stop ends the idle-client sweep. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stop.Do(func() {
		if rl.sweeper != nil {
			rl.sweeper.Stop()
		}
		close(rl.done)
	})
}

// Middleware returns the echo middleware enforcing the limiter
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	if !rl.enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			rl.mu.Lock()
			client, ok := rl.clients[ip]
			if !ok {
				client = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst)}
				rl.clients[ip] = client
			}
			client.lastSeen = time.Now()
			allowed := client.limiter.Allow()
			rl.mu.Unlock()

			if !allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
