package scraper

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Pacer is the politeness policy applied after every fetch: a random delay
// drawn from [min, max], optionally floored by a requests-per-minute limiter.
type Pacer struct {
	min     time.Duration
	max     time.Duration
	limiter *rate.Limiter
}

// NewPacer creates a pacer. perMinute <= 0 disables the rate floor.
func NewPacer(min, max time.Duration, perMinute int) *Pacer {
	if max < min {
		max = min
	}
	p := &Pacer{min: min, max: max}
	if perMinute > 0 {
		p.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	return p
}

// Next draws the next delay
func (p *Pacer) Next() time.Duration {
	if p.max <= p.min {
		return p.min
	}
	return p.min + time.Duration(rand.Int64N(int64(p.max-p.min)+1))
}

// Wait blocks for the next delay or until ctx is cancelled
func (p *Pacer) Wait(ctx context.Context) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	d := p.Next()
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
