package orchestrator

import (
	"math/rand"
	"time"

	"github.com/Francocima/master-skills-scraper/internal/fetch"
)

// retryState is the per-page retry state machine: attempt counts per
// error class plus the next delay. Keeping it explicit makes the
// termination rules testable on their own.
type retryState struct {
	attempts      int // transient attempts so far
	blockAttempts int // blocked attempts so far

	maxAttempts  int
	blockBudget  int
	base         time.Duration
	ceiling      time.Duration
	blockCeiling time.Duration
}

func newRetryState(cfg Config) *retryState {
	return &retryState{
		maxAttempts:  cfg.MaxAttempts,
		blockBudget:  cfg.BlockBudget,
		base:         cfg.BackoffBase,
		ceiling:      cfg.BackoffCeiling,
		blockCeiling: cfg.BlockBackoffCeiling,
	}
}

// next records a failed attempt of the given class and returns the
// delay before the next try, or false when that class's budget is
// spent. Permanent failures never retry.
func (r *retryState) next(class fetch.Class) (time.Duration, bool) {
	switch class {
	case fetch.Permanent:
		return 0, false

	case fetch.Blocked:
		r.blockAttempts++
		if r.blockAttempts > r.blockBudget {
			return 0, false
		}
		// escalate past the normal ceiling: the site told us to go away
		delay := r.ceiling * (1 << (r.blockAttempts - 1))
		if delay > r.blockCeiling {
			delay = r.blockCeiling
		}
		return withJitter(delay), true

	default: // Transient
		r.attempts++
		if r.attempts >= r.maxAttempts {
			return 0, false
		}
		delay := r.base * (1 << (r.attempts - 1))
		if delay > r.ceiling {
			delay = r.ceiling
		}
		return withJitter(delay), true
	}
}

// withJitter spreads retries out so concurrent runs don't hammer the
// site in lockstep. Up to +50% of the base delay.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d)/2+1))
}
