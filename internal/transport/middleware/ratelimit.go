package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/heartmarshall/solarsite/pkg/ctxutil"
)

const bucketIdleTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per client address. Each Limit call
// gets its own bucket set, so differently limited route groups do not share
// budgets.
type RateLimiter struct {
	mu       sync.Mutex
	policies []*policy
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type policy struct {
	rate    float64 // tokens per second
	burst   float64
	buckets map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewRateLimiter starts a sweeper that drops buckets idle for longer than
// ten minutes. Stop releases it.
func NewRateLimiter(sweepEvery time.Duration) *RateLimiter {
	rl := &RateLimiter{stop: make(chan struct{}), now: time.Now}
	go rl.sweepLoop(sweepEvery)
	return rl
}

// Stop is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Limit allows rps requests per second per client with bursts up to burst.
// The client is the address stored by ClientIP, else the RemoteAddr host.
// Rejected requests get 429 with Retry-After in whole seconds.
func (rl *RateLimiter) Limit(rps float64, burst int) Middleware {
	p := &policy{rate: rps, burst: float64(max(burst, 1)), buckets: make(map[string]*bucket)}
	rl.mu.Lock()
	rl.policies = append(rl.policies, p)
	rl.mu.Unlock()

	limit := strconv.Itoa(int(p.burst))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ctxutil.ClientIPFromCtx(r.Context())
			if key == "" {
				key = remoteHost(r.RemoteAddr)
			}

			remaining, wait, ok := rl.take(p, key)
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(wait))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// take spends one token. On refusal it returns the seconds until a token
// is available, at least one.
func (rl *RateLimiter) take(p *policy, key string) (remaining, retryAfter int, ok bool) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, found := p.buckets[key]
	if !found {
		b = &bucket{tokens: p.burst, last: now}
		p.buckets[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(p.burst, b.tokens+elapsed*p.rate)
	}
	b.last = now

	if b.tokens < 1 {
		wait := 60
		if p.rate > 0 {
			wait = max(1, int(math.Ceil((1-b.tokens)/p.rate)))
		}
		return 0, wait, false
	}
	b.tokens--
	return int(b.tokens), 0, true
}

func (rl *RateLimiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-bucketIdleTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for _, p := range rl.policies {
		for key, b := range p.buckets {
			if b.last.Before(cutoff) {
				delete(p.buckets, key)
			}
		}
	}
}
