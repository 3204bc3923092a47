package session

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultWriteInterval is the settle time the keyboard needs around a write:
// after the interface is claimed, and after the packet before it is released.
const DefaultWriteInterval = 50 * time.Millisecond

// Pacer spaces out the operations on a claimed interface. The claim counts as
// the first operation, so every Wait returns no sooner than one interval after
// the previous claim, write or release.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a Pacer started at the moment of the claim. A non-positive
// interval selects DefaultWriteInterval.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		interval = DefaultWriteInterval
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	limiter.Allow()
	return &Pacer{limiter: limiter}
}

// Wait blocks until the next operation may run or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
