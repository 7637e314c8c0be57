package server

import (
	"context"
	"time"
)

// conversionLimiter bounds conversions still running, including those whose
// request already gave up waiting. A slot is held until the conversion settles.
type conversionLimiter struct {
	slots chan struct{}
}

func newConversionLimiter(maxConcurrent int) *conversionLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &conversionLimiter{slots: make(chan struct{}, maxConcurrent)}
}

// TryAcquire takes a slot without blocking and reports whether it got one.
func (l *conversionLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// ReleaseWhen frees the slot once done is closed.
func (l *conversionLimiter) ReleaseWhen(done <-chan struct{}) {
	go func() {
		<-done
		<-l.slots
	}()
}

// Active returns the number of conversions holding a slot.
func (l *conversionLimiter) Active() int {
	return len(l.slots)
}

// WaitForDrain blocks until no conversion holds a slot or ctx is done.
func (l *conversionLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Active() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
