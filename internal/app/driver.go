package app

import (
	"context"
	"time"
)

// runTicker calls tick at a fixed interval until ctx is cancelled. Ticks
// that overrun are coalesced by time.Ticker. Each receive from control
// runs its function on the tick goroutine between ticks.
func runTicker(ctx context.Context, interval time.Duration, control <-chan func(), tick func(context.Context)) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-control:
			fn()
		case <-t.C:
			tick(ctx)
		}
	}
}

// post schedules fn on a tick goroutine without blocking. It reports false
// when the control channel is full.
func post(control chan<- func(), fn func()) bool {
	select {
	case control <- fn:
		return true
	default:
		return false
	}
}
