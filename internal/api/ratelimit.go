package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultLimiterIdle = 10 * time.Minute

// RateLimit bounds requests per client IP. A zero PerSecond disables it.
//
// X-Forwarded-For is only honoured with TrustProxy set, i.e. when the API sits
// behind a proxy that overwrites the header. Limiters of clients that stayed
// quiet for IdleTTL (10 minutes when zero) are dropped.
type RateLimit struct {
	PerSecond  float64
	Burst      int
	TrustProxy bool
	IdleTTL    time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterStore(cfg RateLimit) *limiterStore {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	idle := cfg.IdleTTL
	if idle <= 0 {
		idle = defaultLimiterIdle
	}
	return &limiterStore{
		limiters:  make(map[string]*clientLimiter),
		limit:     rate.Limit(cfg.PerSecond),
		burst:     burst,
		idle:      idle,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.idle {
		s.evictLocked(now)
	}

	l, ok := s.limiters[key]
	if !ok {
		l = &clientLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[key] = l
	}
	l.lastSeen = now
	return l.limiter
}

// evictLocked drops limiters idle for longer than s.idle. A dropped client
// starts again with a full burst, which it would have regained by then anyway.
func (s *limiterStore) evictLocked(now time.Time) {
	for key, l := range s.limiters {
		if now.Sub(l.lastSeen) > s.idle {
			delete(s.limiters, key)
		}
	}
	s.lastSweep = now
}

func (s *limiterStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

func withRateLimit(cfg RateLimit, logger *zap.Logger) mux.MiddlewareFunc {
	return newLimiterStore(cfg).middleware(cfg.TrustProxy, logger)
}

func (s *limiterStore) middleware(trustProxy bool, logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trustProxy)
			if !s.get(ip).Allow() {
				logger.Warn("Rate limit exceeded",
					zap.String("ip", ip),
					zap.String("request_id", RequestIDFromContext(r.Context())))
				respondJSON(w, http.StatusTooManyRequests, envelope{
					"error": ErrorBody{Code: CodeRateLimited, Message: "rate limit exceeded, try again later"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the connection address, or the first X-Forwarded-For hop
// when the proxy in front is trusted.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
