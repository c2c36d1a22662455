package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/opportunity-hub/internal/apperr"
	"github.com/iliyamo/opportunity-hub/internal/config"
)

// RateClass names a route class and the error it answers with once its
// budget is spent.
type RateClass struct {
	Name    string
	Code    string
	Message string
}

var (
	ClassGeneral = RateClass{"general", apperr.CodeRateLimited,
		"Too many requests from this IP, please try again later."}
	ClassAuth = RateClass{"auth", "AUTH_RATE_LIMIT_EXCEEDED",
		"Too many authentication attempts, please try again later."}
	ClassRegistration = RateClass{"registration", "REGISTRATION_RATE_LIMIT_EXCEEDED",
		"Too many registration attempts, please try again later."}
)

type window struct {
	start time.Time
	count int
}

// RateLimiter counts requests per client IP in fixed windows.  Counters are
// process-local.
type RateLimiter struct {
	class   RateClass
	rule    config.RateLimitRule
	enabled bool
	debug   bool
	now     func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

func NewRateLimiter(class RateClass, rule config.RateLimitRule, enabled, debug bool) *RateLimiter {
	if rule.Max < 1 {
		rule.Max = 1
	}
	if rule.Window <= 0 {
		rule.Window = time.Minute
	}
	return &RateLimiter{
		class:   class,
		rule:    rule,
		enabled: enabled,
		debug:   debug,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// WithClock replaces the time source; used by tests.
func (l *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	l.now = now
	return l
}

// take consumes one request for key.  It returns whether the request fits
// the budget, how many remain and when the window resets.
func (l *RateLimiter) take(key string) (bool, int, time.Time) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(l.rule.Window)) {
		w = &window{start: now}
		l.windows[key] = w
	}
	reset := w.start.Add(l.rule.Window)
	if w.count >= l.rule.Max {
		return false, 0, reset
	}
	w.count++
	return true, l.rule.Max - w.count, reset
}

// Sweep drops windows that ended before now.
func (l *RateLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, w := range l.windows {
		if !now.Before(w.start.Add(l.rule.Window)) {
			delete(l.windows, k)
			n++
		}
	}
	return n
}

// Middleware enforces the limiter on a route or group.
func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	if !l.enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := clientKey(c)
			allowed, remaining, reset := l.take(key)

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.rule.Max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if !allowed {
				secs := int(math.Ceil(reset.Sub(l.now()).Seconds()))
				if secs < 1 {
					secs = 1
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				if l.debug {
					c.Logger().Infof("[ratelimit] block class=%s key=%s retry=%ds", l.class.Name, key, secs)
				}
				return apperr.TooManyRequests(l.class.Code, l.class.Message, secs)
			}
			if l.debug {
				h.Set("X-RateLimit-Key", l.class.Name+":"+key)
			}
			return next(c)
		}
	}
}

// RateLimits bundles the limiters for every route class.
type RateLimits struct {
	General      *RateLimiter
	Auth         *RateLimiter
	Registration *RateLimiter
}

func NewRateLimits(cfg config.RateLimitConfig) RateLimits {
	return RateLimits{
		General:      NewRateLimiter(ClassGeneral, cfg.General, cfg.Enabled, cfg.Debug),
		Auth:         NewRateLimiter(ClassAuth, cfg.Auth, cfg.Enabled, cfg.Debug),
		Registration: NewRateLimiter(ClassRegistration, cfg.Registration, cfg.Enabled, cfg.Debug),
	}
}

// Sweep evicts finished windows from every limiter.
func (r RateLimits) Sweep(now time.Time) int {
	n := 0
	for _, l := range []*RateLimiter{r.General, r.Auth, r.Registration} {
		if l != nil {
			n += l.Sweep(now)
		}
	}
	return n
}
