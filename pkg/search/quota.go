package search

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQuotaExhausted is returned when the daily search quota has been used up.
// Waiting will not help; the run should degrade rather than block for hours.
var ErrQuotaExhausted = errors.New("search quota exhausted")

// Quota describes the call budget for a search API key.
// Zero values disable the corresponding window.
type Quota struct {
	PerMinute int
	PerHour   int
	PerDay    int
	MinDelay  time.Duration
}

// QuotaLimiter paces outbound search calls: a fixed minimum delay between
// consecutive calls plus sliding per-minute, per-hour, and per-day windows.
type QuotaLimiter struct {
	logger *slog.Logger
	calls  []time.Time
	last   time.Time
	quota  Quota
	mu     sync.Mutex
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewQuotaLimiter creates a limiter for the given quota.
func NewQuotaLimiter(quota Quota, logger *slog.Logger) *QuotaLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuotaLimiter{
		quota:  quota,
		logger: logger,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wait blocks until the next call is allowed. It returns ErrQuotaExhausted
// if the daily window is full, or the context error if ctx is canceled
// while waiting. On success the call is recorded against all windows.
func (q *QuotaLimiter) Wait(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		now := q.now()
		q.prune(now)

		if q.quota.PerDay > 0 && q.countSince(now.Add(-24*time.Hour)) >= q.quota.PerDay {
			return ErrQuotaExhausted
		}

		wait := q.nextWait(now)
		if wait <= 0 {
			q.calls = append(q.calls, now)
			q.last = now
			return nil
		}

		q.logger.DebugContext(ctx, "quota pause", "wait", wait)
		q.mu.Unlock()
		err := q.sleep(ctx, wait)
		q.mu.Lock()
		if err != nil {
			return err
		}
	}
}

// nextWait returns how long to wait before the next call is permitted
// by the min-delay, per-minute, and per-hour constraints.
func (q *QuotaLimiter) nextWait(now time.Time) time.Duration {
	var wait time.Duration

	if q.quota.MinDelay > 0 && !q.last.IsZero() {
		if elapsed := now.Sub(q.last); elapsed < q.quota.MinDelay {
			wait = q.quota.MinDelay - elapsed
		}
	}

	if w := q.windowWait(now, time.Minute, q.quota.PerMinute); w > wait {
		wait = w
	}
	if w := q.windowWait(now, time.Hour, q.quota.PerHour); w > wait {
		wait = w
	}

	return wait
}

// windowWait returns the time until the oldest call in a full sliding
// window ages out, or zero if the window has room.
func (q *QuotaLimiter) windowWait(now time.Time, window time.Duration, limit int) time.Duration {
	if limit <= 0 {
		return 0
	}
	cutoff := now.Add(-window)
	n := 0
	oldest := time.Time{}
	for _, t := range q.calls {
		if t.After(cutoff) {
			if n == 0 {
				oldest = t
			}
			n++
		}
	}
	if n < limit {
		return 0
	}
	return oldest.Sub(cutoff)
}

// prune drops call records older than the largest window (24h).
func (q *QuotaLimiter) prune(now time.Time) {
	cutoff := now.Add(-24 * time.Hour)
	i := 0
	for i < len(q.calls) && !q.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		q.calls = q.calls[i:]
	}
}

func (q *QuotaLimiter) countSince(cutoff time.Time) int {
	n := 0
	for _, t := range q.calls {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}

// Remaining reports how many calls are left in the daily window.
// Returns -1 when no daily quota is configured.
func (q *QuotaLimiter) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.quota.PerDay <= 0 {
		return -1
	}
	now := q.now()
	q.prune(now)
	left := q.quota.PerDay - q.countSince(now.Add(-24*time.Hour))
	if left < 0 {
		return 0
	}
	return left
}
