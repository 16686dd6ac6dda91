// Package orchestrator drives the fetch → extract → dedupe → store
// loop across result pages for one query. Pages are processed strictly
// sequentially: pagination depends on the previous page's content.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Francocima/master-skills-scraper/internal/fetch"
	"github.com/Francocima/master-skills-scraper/internal/filter"
	"github.com/Francocima/master-skills-scraper/internal/scraper"
	"github.com/Francocima/master-skills-scraper/internal/store"
)

// Config are the knobs for retries, rate limiting and budgets.
type Config struct {
	MaxAttempts         int           // fetch attempts per page for transient failures
	BackoffBase         time.Duration // first retry delay
	BackoffCeiling      time.Duration // max retry delay for transient failures
	BlockBackoffCeiling time.Duration // max retry delay once the site blocks us
	BlockBudget         int           // blocked retries before the run fails
	PageDelay           time.Duration // minimum delay between consecutive pages
	RunBudget           time.Duration // wall-clock cap for the whole run, 0 = none
}

// DefaultConfig matches the target site's tolerance in practice.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:         3,
		BackoffBase:         2 * time.Second,
		BackoffCeiling:      30 * time.Second,
		BlockBackoffCeiling: 2 * time.Minute,
		BlockBudget:         2,
		PageDelay:           2 * time.Second,
	}
}

// Orchestrator walks all result pages of one query. Safe for use by
// multiple concurrent runs: everything mutable lives in the Run.
type Orchestrator struct {
	fetcher   scraper.Fetcher
	extractor scraper.Extractor
	store     store.Store
	cfg       Config
}

func New(fetcher scraper.Fetcher, extractor scraper.Extractor, st store.Store, cfg Config) *Orchestrator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Orchestrator{fetcher: fetcher, extractor: extractor, store: st, cfg: cfg}
}

// Execute runs the pagination loop until a terminal status. It never
// returns an error: failures freeze into the run's status and detail,
// and records accepted before the failure stay stored.
func (o *Orchestrator) Execute(ctx context.Context, run *Run) {
	if o.cfg.RunBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RunBudget)
		defer cancel()
	}

	run.setRunning()
	q := run.query
	log.Printf("🚀 Run %s: scraping %q / %q", run.ID(), q.Keywords, q.Location)

	ids, err := o.store.ListingIDs(ctx)
	if err != nil {
		run.finish(StatusFailed, fmt.Sprintf("loading stored listing ids: %v", err))
		return
	}
	run.seen.Seed(ids)

	zeroNewStreak := 0

	for pageIndex := 0; ; pageIndex++ {
		// rate limit between pages regardless of outcome
		if pageIndex > 0 {
			if !sleepCtx(ctx, o.cfg.PageDelay) {
				o.finishCancelled(ctx, run)
				return
			}
		}

		page, err := o.fetchWithRetry(ctx, run, q, pageIndex)
		if err != nil {
			o.finishAfterFetchFailure(ctx, run, pageIndex, err)
			return
		}
		run.addPage()

		result, err := o.extractor.Extract(page)
		if err != nil {
			if !errors.Is(err, scraper.ErrAnomaly) {
				err = fmt.Errorf("%w: %v", scraper.ErrAnomaly, err)
			}
			if pageIndex == 0 {
				// nothing trustworthy was gathered
				run.finish(StatusFailed, fmt.Sprintf("extraction anomaly on first page: %v", err))
			} else {
				run.finish(StatusPartiallyCompleted, fmt.Sprintf("extraction anomaly on page %d: %v", pageIndex, err))
			}
			return
		}
		log.Printf("📦 Run %s: page %d yielded %d cards (has_next=%v)", run.ID(), pageIndex, len(result.Jobs), result.HasNext)

		newOnPage, done := o.processRecords(ctx, run, result.Jobs)
		if done {
			return
		}

		// Two consecutive pages with nothing new while the site claims
		// more pages exist smells like an extraction regression looping
		// over an unchanging page.
		if newOnPage == 0 && result.HasNext {
			zeroNewStreak++
			if zeroNewStreak >= 2 {
				run.finish(StatusPartiallyCompleted, "no new records on two consecutive pages with has_next set")
				return
			}
		} else {
			zeroNewStreak = 0
		}

		if !result.HasNext {
			run.finish(StatusCompleted, "")
			return
		}
		if q.MaxPages > 0 && pageIndex+1 >= q.MaxPages {
			run.finish(StatusCompleted, "")
			return
		}
	}
}

// processRecords dedupes and stores one page's records. Returns how
// many were newly stored and whether the run reached a terminal state.
func (o *Orchestrator) processRecords(ctx context.Context, run *Run, jobs []scraper.Job) (int, bool) {
	q := run.query
	newOnPage := 0

	for _, job := range jobs {
		if !job.Valid() {
			continue
		}

		// the feed is date-sorted, so the first listing past the limit
		// means everything after it is older too
		if q.PostedWithin != "" && job.PostedText != "" && !filter.WithinLimit(job.PostedText, q.PostedWithin) {
			run.finish(StatusCompleted, "")
			return newOnPage, true
		}

		// mark before store: a racing page can never double-pass
		if !seenMark(run, job.ListingID) {
			continue
		}

		stored, err := o.store.AppendIfAbsent(ctx, job)
		if err != nil {
			if run.accepted() > 0 {
				run.finish(StatusPartiallyCompleted, fmt.Sprintf("store append failed: %v", err))
			} else {
				run.finish(StatusFailed, fmt.Sprintf("store append failed: %v", err))
			}
			return newOnPage, true
		}
		if !stored {
			// present from a concurrent run; a duplicate, not an error
			run.addDuplicate()
			continue
		}

		newOnPage++
		accepted := run.addAccepted()
		if q.MaxResults > 0 && accepted >= q.MaxResults {
			run.finish(StatusCompleted, "")
			return newOnPage, true
		}
	}
	return newOnPage, false
}

// fetchWithRetry drives the retry state machine for one page.
func (o *Orchestrator) fetchWithRetry(ctx context.Context, run *Run, q scraper.Query, pageIndex int) (*scraper.RawPage, error) {
	state := newRetryState(o.cfg)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		run.addAttempt()
		page, err := o.fetcher.Fetch(ctx, q, pageIndex)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		class := fetch.ClassOf(err)
		delay, retry := state.next(class)
		if !retry {
			return nil, err
		}

		log.Printf("⚠️ Run %s: page %d fetch failed (%s), retrying in %v: %v", run.ID(), pageIndex, class, delay, err)
		if !sleepCtx(ctx, delay) {
			return nil, ctx.Err()
		}
	}
}

// finishAfterFetchFailure maps an exhausted fetch error to the run's
// terminal status. Cancellation is decided from the run context, never
// from the fetch error: a per-attempt timeout surfaces as a transient
// fetch error that also wraps context.DeadlineExceeded, and that must
// not read as a cancelled run.
func (o *Orchestrator) finishAfterFetchFailure(ctx context.Context, run *Run, pageIndex int, err error) {
	if ctx.Err() != nil {
		o.finishCancelled(ctx, run)
		return
	}

	switch fetch.ClassOf(err) {
	case fetch.Blocked:
		run.finish(StatusFailed, fmt.Sprintf("AntiAutomationBlocked: %v", err))
	case fetch.Permanent:
		if pageIndex == 0 {
			run.finish(StatusFailed, fmt.Sprintf("first page unavailable: %v", err))
		} else {
			// the page simply does not exist; pagination is over
			run.finish(StatusCompleted, "")
		}
	default:
		if pageIndex == 0 {
			run.finish(StatusFailed, fmt.Sprintf("fetch retries exhausted on first page: %v", err))
		} else {
			run.finish(StatusPartiallyCompleted, fmt.Sprintf("fetch retries exhausted on page %d: %v", pageIndex, err))
		}
	}
}

// finishCancelled distinguishes an explicit cancel from a blown run
// budget; both preserve what was stored.
func (o *Orchestrator) finishCancelled(ctx context.Context, run *Run) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		run.finish(StatusCancelled, "run wall-clock budget exceeded")
		return
	}
	run.finish(StatusCancelled, "run cancelled")
}

// seenMark marks the listing id in the run's seen-set, bumping the
// duplicate counter when it was already there.
func seenMark(run *Run, id string) bool {
	if run.seen.MarkSeen(id) {
		return true
	}
	run.addDuplicate()
	return false
}

// sleepCtx waits for d or until ctx is done. Reports whether the full
// delay elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
