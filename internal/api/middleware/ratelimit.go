package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Togather-Foundation/listings/internal/config"
	"golang.org/x/time/rate"
)

type RateLimitTier string

const (
	TierPublic RateLimitTier = "public"
	// TierAuth covers signup and login, where guessing is the threat.
	TierAuth RateLimitTier = "auth"
)

const limiterTTL = 15 * time.Minute

// RateLimiter keeps one token bucket per client and tier.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	perMinute map[RateLimitTier]int
	trusted   []*net.IPNet
	env       string
	now       func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates the limiter and evicts idle clients until ctx is done.
func NewRateLimiter(ctx context.Context, cfg config.RateLimitConfig, env string) *RateLimiter {
	l := &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		perMinute: map[RateLimitTier]int{
			TierPublic: cfg.PublicPerMinute,
			TierAuth:   cfg.AuthPerMinute,
		},
		trusted: parseCIDRs(cfg.TrustedProxyCIDRs),
		env:     env,
		now:     time.Now,
	}
	go l.cleanupLoop(ctx)
	return l
}

// Middleware applies the auth tier to /auth/ routes and the public tier to
// everything else. Health and metrics probes are never limited.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		tier := TierPublic
		if strings.HasPrefix(r.URL.Path, "/auth/") {
			tier = TierAuth
		}

		limiter := l.limiter(tier, l.clientKey(r))
		if limiter != nil && !limiter.Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds(tier)))
			writeTooMany(w, r, l.env)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) limiter(tier RateLimitTier, key string) *rate.Limiter {
	limit := l.perMinute[tier]
	if limit <= 0 {
		return nil
	}
	lookup := string(tier) + ":" + key

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.limiters[lookup]; ok {
		entry.lastSeen = l.now()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(limit)), limit)
	l.limiters[lookup] = &limiterEntry{limiter: limiter, lastSeen: l.now()}
	return limiter
}

func (l *RateLimiter) retryAfterSeconds(tier RateLimitTier) int {
	limit := l.perMinute[tier]
	if limit <= 0 {
		return 60
	}
	seconds := 60 / limit
	if seconds < 1 {
		return 1
	}
	return seconds
}

func (l *RateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-ctx.Done():
			return
		}
	}
}

func (l *RateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(l.limiters, key)
		}
	}
}

// clientKey only trusts X-Forwarded-For / X-Real-IP when the connection comes
// from a configured proxy.
func (l *RateLimiter) clientKey(r *http.Request) string {
	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	if l.isTrustedProxy(remoteIP) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}
	return remoteIP
}

func (l *RateLimiter) isTrustedProxy(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, cidr := range l.trusted {
		if cidr.Contains(parsed) {
			return true
		}
	}
	return false
}

func parseCIDRs(values []string) []*net.IPNet {
	var out []*net.IPNet
	for _, value := range values {
		if _, cidr, err := net.ParseCIDR(strings.TrimSpace(value)); err == nil {
			out = append(out, cidr)
		}
	}
	return out
}
