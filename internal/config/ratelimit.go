package config

import "time"

// RateLimitRule is the budget for one route class: at most Max requests per
// client IP inside each Window.
type RateLimitRule struct {
	Max    int
	Window time.Duration
}

// RateLimitConfig holds the rules for the three route classes.  Counters live
// in process memory only.
type RateLimitConfig struct {
	Enabled      bool
	General      RateLimitRule
	Auth         RateLimitRule
	Registration RateLimitRule
	Debug        bool
}

func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		General: RateLimitRule{
			Max:    envInt("RATE_LIMIT_MAX", 100),
			Window: envDur("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
		Auth: RateLimitRule{
			Max:    envInt("AUTH_RATE_LIMIT_MAX", 5),
			Window: envDur("AUTH_RATE_LIMIT_WINDOW", 15*time.Minute),
		},
		Registration: RateLimitRule{
			Max:    envInt("REGISTRATION_RATE_LIMIT_MAX", 3),
			Window: envDur("REGISTRATION_RATE_LIMIT_WINDOW", time.Hour),
		},
		Debug: envBool("RATE_LIMIT_DEBUG", false),
	}
	// legacy millisecond window from older deployments
	if ms := envInt("RATE_LIMIT_WINDOW_MS", 0); ms > 0 {
		def.General.Window = time.Duration(ms) * time.Millisecond
	}
	for _, r := range []*RateLimitRule{&def.General, &def.Auth, &def.Registration} {
		if r.Max < 1 {
			r.Max = 1
		}
		if r.Window <= 0 {
			r.Window = time.Minute
		}
	}
	return def
}
