package orchestrator

import (
	"sync"
	"time"

	"github.com/Francocima/master-skills-scraper/internal/dedup"
	"github.com/Francocima/master-skills-scraper/internal/scraper"
)

type Status string

const (
	StatusPending            Status = "PENDING"
	StatusRunning            Status = "RUNNING"
	StatusCompleted          Status = "COMPLETED"
	StatusPartiallyCompleted Status = "PARTIALLY_COMPLETED"
	StatusFailed             Status = "FAILED"
	StatusCancelled          Status = "CANCELLED"
)

// Terminal reports whether the run has frozen.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusPartiallyCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Run is the mutable state of one scrape. It is owned by the
// orchestrator executing it; everyone else reads through Snapshot.
type Run struct {
	mu sync.Mutex

	id    string
	query scraper.Query
	seen  *dedup.Seen // owned by this run for its whole lifetime

	status           Status
	pagesFetched     int
	fetchAttempts    int
	recordsAccepted  int
	recordsDuplicate int
	errorDetail      string
	startedAt        time.Time
	finishedAt       *time.Time

	done chan struct{}
}

// Snapshot is a point-in-time copy of a run, safe to hand out.
type Snapshot struct {
	ID               string        `json:"id"`
	Query            scraper.Query `json:"query"`
	Status           Status        `json:"status"`
	PagesFetched     int           `json:"pages_fetched"`
	FetchAttempts    int           `json:"fetch_attempts"`
	RecordsAccepted  int           `json:"records_accepted"`
	RecordsDuplicate int           `json:"records_duplicate"`
	ErrorDetail      string        `json:"error_detail,omitempty"`
	StartedAt        time.Time     `json:"started_at"`
	FinishedAt       *time.Time    `json:"finished_at,omitempty"`
}

func NewRun(id string, q scraper.Query) *Run {
	return &Run{
		id:        id,
		query:     q,
		seen:      dedup.NewSeen(),
		status:    StatusPending,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}
}

func (r *Run) ID() string { return r.id }

// Done closes once the run reaches a terminal status.
func (r *Run) Done() <-chan struct{} { return r.done }

func (r *Run) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		ID:               r.id,
		Query:            r.query,
		Status:           r.status,
		PagesFetched:     r.pagesFetched,
		FetchAttempts:    r.fetchAttempts,
		RecordsAccepted:  r.recordsAccepted,
		RecordsDuplicate: r.recordsDuplicate,
		ErrorDetail:      r.errorDetail,
		StartedAt:        r.startedAt,
		FinishedAt:       r.finishedAt,
	}
}

func (r *Run) setRunning() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusPending {
		r.status = StatusRunning
	}
}

// finish freezes the run. The first terminal status wins.
func (r *Run) finish(status Status, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.Terminal() {
		return
	}
	r.status = status
	r.errorDetail = detail
	now := time.Now()
	r.finishedAt = &now
	close(r.done)
}

func (r *Run) addPage() {
	r.mu.Lock()
	r.pagesFetched++
	r.mu.Unlock()
}

func (r *Run) addAttempt() {
	r.mu.Lock()
	r.fetchAttempts++
	r.mu.Unlock()
}

func (r *Run) addAccepted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordsAccepted++
	return r.recordsAccepted
}

func (r *Run) addDuplicate() {
	r.mu.Lock()
	r.recordsDuplicate++
	r.mu.Unlock()
}

func (r *Run) accepted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recordsAccepted
}
