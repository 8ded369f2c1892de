package imports

import (
	"context"
	"math"
	"time"

	"club-import/common"

	"golang.org/x/time/rate"
)

// Pacer decides how long to wait between two batches. It exists only to stay
// under the entity store's rate limits; ordering never depends on it.
type Pacer interface {
	// Wait blocks after completedBatches batches have settled.
	Wait(ctx context.Context, completedBatches int) error
}

// NoDelay starts the next batch immediately
type NoDelay struct{}

func (NoDelay) Wait(ctx context.Context, _ int) error {
	return ctx.Err()
}

// FixedDelay sleeps the same duration between batches
type FixedDelay struct {
	Delay time.Duration
}

func (p FixedDelay) Wait(ctx context.Context, _ int) error {
	return sleep(ctx, p.Delay)
}

// maxBackoff caps an ExponentialBackoff that has no Max
const maxBackoff = time.Hour

// ExponentialBackoff sleeps Base, Base*Factor, Base*Factor^2 ... capped at Max
type ExponentialBackoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64
}

func (p ExponentialBackoff) Delay(completedBatches int) time.Duration {
	factor := p.Factor
	if factor < 1 {
		factor = 2
	}
	n := completedBatches - 1
	if n < 0 {
		n = 0
	}
	limit := p.Max
	if limit <= 0 {
		limit = maxBackoff
	}
	f := float64(p.Base) * math.Pow(factor, float64(n))
	if math.IsInf(f, 0) || math.IsNaN(f) || f >= float64(limit) {
		return limit
	}
	return time.Duration(f)
}

func (p ExponentialBackoff) Wait(ctx context.Context, completedBatches int) error {
	return sleep(ctx, p.Delay(completedBatches))
}

// TokenBucket admits one batch per token
type TokenBucket struct {
	limiter *rate.Limiter
}

func NewTokenBucket(perSecond float64, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (p *TokenBucket) Wait(ctx context.Context, _ int) error {
	return p.limiter.Wait(ctx)
}

// NewPacer builds the pacer configured for a batch run
func NewPacer(opts common.BatchOptions) Pacer {
	switch opts.Pacing {
	case common.PacingNone:
		return NoDelay{}
	case common.PacingBackoff:
		return ExponentialBackoff{Base: opts.Delay, Max: opts.MaxDelay, Factor: 2}
	case common.PacingTokenBucket:
		return NewTokenBucket(opts.RatePerSecond, 1)
	default:
		return FixedDelay{Delay: opts.Delay}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
