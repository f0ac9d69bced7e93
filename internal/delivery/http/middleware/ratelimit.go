package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	h "churchsite/internal/delivery/http/helpers"
)

// RateLimitConfig configures a per-client token bucket.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
	// IdleTTL is how long an unused client bucket is kept.
	IdleTTL time.Duration
	// TrustedProxies lists the addresses or CIDR ranges allowed to set X-Forwarded-For.
	// When empty the connection address is always used.
	TrustedProxies []string
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP. Buckets are kept in memory only.
type RateLimiter struct {
	conf    RateLimitConfig
	trusted []netip.Prefix
	mu      sync.Mutex
	buckets map[string]*clientBucket
	now     func() time.Time
}

// NewRateLimiter returns a limiter allowing conf.PerMinute requests per minute per IP
// with bursts of conf.Burst. It fails when a trusted proxy entry is not an IP or CIDR.
func NewRateLimiter(conf RateLimitConfig) (*RateLimiter, error) {
	if conf.PerMinute < 1 {
		conf.PerMinute = 1
	}
	if conf.Burst < 1 {
		conf.Burst = 1
	}
	if conf.IdleTTL <= 0 {
		conf.IdleTTL = 10 * time.Minute
	}
	trusted, err := ParseTrustedProxies(conf.TrustedProxies)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{conf: conf, trusted: trusted, buckets: make(map[string]*clientBucket), now: time.Now}, nil
}

// ParseTrustedProxies parses single addresses and CIDR ranges.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		if p, err := netip.ParsePrefix(e); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q", e)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		return b.limiter
	}
	lim := rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.conf.PerMinute)), rl.conf.Burst)
	rl.buckets[key] = &clientBucket{limiter: lim, lastSeen: now}
	return lim
}

// Sweep drops buckets idle for longer than IdleTTL and returns how many were removed.
func (rl *RateLimiter) Sweep() int {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for k, b := range rl.buckets {
		if now.Sub(b.lastSeen) > rl.conf.IdleTTL {
			delete(rl.buckets, k)
			removed++
		}
	}
	return removed
}

// Limit wraps next, answering 429 with Retry-After when the client's bucket is empty.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lim := rl.limiter(rl.clientIP(r))
		if !lim.AllowN(rl.now(), 1) {
			w.Header().Set("Retry-After", "60")
			h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeTooManyRequests, "too many requests, please try again later")
			return
		}
		next(w, r)
	}
}

// clientIP returns the connection address unless the peer is a trusted proxy. Behind
// trusted proxies it walks X-Forwarded-For from the right and returns the first hop
// that is not itself trusted.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	remote := remoteHost(r.RemoteAddr)
	addr, err := netip.ParseAddr(remote)
	if err != nil || !rl.isTrusted(addr) {
		return remote
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			// Anything left of a malformed hop was written by the client.
			return remote
		}
		if !rl.isTrusted(hop) {
			return hop.Unmap().String()
		}
		remote = hop.Unmap().String()
	}
	return remote
}

func (rl *RateLimiter) isTrusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range rl.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
