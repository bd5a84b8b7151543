// Package ratelimit holds the per-minute and per-day request quotas shared by
// the AI clients.
package ratelimit

import (
	"context"
	"golang.org/x/time/rate"
)

type Limits struct {
	minute *rate.Limiter
	day    *rate.Limiter
}

func (l *Limits) SetMinuteRateLimit(maxRequestsPerMinute float32) {
	l.minute = rate.NewLimiter(rate.Limit(maxRequestsPerMinute/60), 1)
}

func (l *Limits) SetDayRateLimit(maxRequestsPerDay float32) {
	l.day = rate.NewLimiter(rate.Limit(maxRequestsPerDay/86400), int(maxRequestsPerDay))
}

// Wait blocks until every configured quota allows one more request.
func (l *Limits) Wait(ctx context.Context) error {
	for _, limiter := range []*rate.Limiter{l.minute, l.day} {
		if limiter == nil {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
