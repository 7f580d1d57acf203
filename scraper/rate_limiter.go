// scraper/rate_limiter.go
package scraper

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles requests to the catalog.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

type noOpLimiter struct{}

func (noOpLimiter) Wait(_ context.Context) error { return nil }

// NewRateLimiter returns a limiter allowing requestsPerSecond requests per
// second with a burst of one. Zero disables limiting.
func NewRateLimiter(requestsPerSecond float64) RateLimiter {
	if requestsPerSecond <= 0 {
		return noOpLimiter{}
	}
	return rate.NewLimiter(rate.Every(time.Duration(float64(time.Second)/requestsPerSecond)), 1)
}
