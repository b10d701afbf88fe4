package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-TableReservation/internal/api/handlers"
)

const (
	msgRateLimited = "слишком много запросов, попробуйте позже"

	// лимитеры, не использованные дольше limiterTTL, удаляются
	limiterTTL = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает частоту запросов с одного IP
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastPrune time.Time
	now       func() time.Time

	// X-Forwarded-For учитывается только от этих адресов
	trustedProxies []*net.IPNet
}

func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if burst <= 0 {
		burst = 20
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    burst,
		now:      time.Now,
	}
}

// TrustProxies задает подсети обратных прокси (CIDR или одиночный IP).
// Без них ключом всегда служит адрес TCP-соединения.
func (l *RateLimiter) TrustProxies(proxies []string) error {
	nets := make([]*net.IPNet, 0, len(proxies))
	for _, p := range proxies {
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return fmt.Errorf("ratelimit: invalid proxy address %q", p)
			}
			bits := 8 * net.IPv4len
			if ip.To4() == nil {
				bits = 8 * net.IPv6len
			}
			p = fmt.Sprintf("%s/%d", p, bits)
		}
		_, ipNet, err := net.ParseCIDR(p)
		if err != nil {
			return fmt.Errorf("ratelimit: invalid proxy subnet %q: %v", p, err)
		}
		nets = append(nets, ipNet)
	}
	l.trustedProxies = nets
	return nil
}

// Allow расходует токен клиента key
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) > limiterTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > limiterTTL {
				delete(l.visitors, k)
			}
		}
		l.lastPrune = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := l.clientIP(r)
		if ip != "" && !l.Allow(ip) {
			handlers.RespondError(w, http.StatusTooManyRequests, handlers.KindRateLimited, msgRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP адрес соединения; за доверенным прокси - ближайший недоверенный адрес
// из X-Forwarded-For, считая справа (левые значения подставляет сам клиент).
func (l *RateLimiter) clientIP(r *http.Request) string {
	remote, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remote = r.RemoteAddr
	}

	if !l.isTrusted(remote) {
		return remote
	}

	forwarded := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(forwarded) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(forwarded[i])
		if hop == "" {
			continue
		}
		if !l.isTrusted(hop) {
			return hop
		}
	}
	return remote
}

func (l *RateLimiter) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range l.trustedProxies {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
