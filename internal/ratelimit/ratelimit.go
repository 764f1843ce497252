// Package ratelimit paces outbound requests: a Pacer keeps polite spacing
// between feed fetches, a Budget caps daily AI requests.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Pacer enforces a minimum interval between calls to Wait.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until the interval since the previous call has elapsed or ctx
// is cancelled. The first call returns immediately.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	var sleep time.Duration
	if !p.last.IsZero() {
		if elapsed := now.Sub(p.last); elapsed < p.interval {
			sleep = p.interval - elapsed
		}
	}
	p.last = now.Add(sleep)
	p.mu.Unlock()

	if sleep <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(sleep):
		return nil
	}
}

// Budget caps request counts within a rolling 24h window. A max of 0 means
// unlimited.
type Budget struct {
	mu      sync.Mutex
	used    int
	max     int
	resetAt time.Time
}

func NewBudget(max int) *Budget {
	return &Budget{
		max:     max,
		resetAt: time.Now().Add(24 * time.Hour),
	}
}

// Allow reports whether another request fits the budget.
func (b *Budget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	return b.max <= 0 || b.used < b.max
}

// Use consumes one request from the budget.
func (b *Budget) Use() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	if b.max > 0 && b.used >= b.max {
		return fmt.Errorf("request budget exceeded (%d/%d)", b.used, b.max)
	}
	b.used++
	return nil
}

// Stats returns current usage counters.
func (b *Budget) Stats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]interface{}{
		"used":     b.used,
		"limit":    b.max,
		"reset_at": b.resetAt.Format(time.RFC3339),
	}
}

func (b *Budget) checkReset() {
	if time.Now().After(b.resetAt) {
		b.used = 0
		b.resetAt = time.Now().Add(24 * time.Hour)
	}
}
