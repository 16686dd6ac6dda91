// Package coordinator accepts scrape requests, hands them to the
// orchestrator and tracks their runs. It surfaces run status verbatim;
// it never reinterprets failure kinds.
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Francocima/master-skills-scraper/internal/orchestrator"
	"github.com/Francocima/master-skills-scraper/internal/scraper"
)

// Notifier is told when a run reaches a terminal status.
type Notifier interface {
	RunFinished(orchestrator.Snapshot)
}

type entry struct {
	run    *orchestrator.Run
	cancel context.CancelFunc
}

// Coordinator is the in-process run registry. Runs for different
// queries execute concurrently; each owns its state exclusively.
// Terminal runs stay in the registry for the life of the process so
// their status remains queryable; a run entry is a few hundred bytes.
type Coordinator struct {
	mu       sync.Mutex
	orch     *orchestrator.Orchestrator
	notifier Notifier // optional
	runs     map[string]*entry
}

func New(orch *orchestrator.Orchestrator, notifier Notifier) *Coordinator {
	return &Coordinator{
		orch:     orch,
		notifier: notifier,
		runs:     make(map[string]*entry),
	}
}

// Start launches a run and returns its id immediately.
func (c *Coordinator) Start(q scraper.Query) (string, error) {
	if q.Keywords == "" {
		return "", fmt.Errorf("keywords are required")
	}

	id := uuid.NewString()
	run := orchestrator.NewRun(id, q)
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.runs[id] = &entry{run: run, cancel: cancel}
	c.mu.Unlock()

	go func() {
		defer cancel()
		c.orch.Execute(ctx, run)
		if c.notifier != nil {
			c.notifier.RunFinished(run.Snapshot())
		}
	}()

	return id, nil
}

// Get returns the current snapshot of a run.
func (c *Coordinator) Get(id string) (orchestrator.Snapshot, bool) {
	c.mu.Lock()
	e, ok := c.runs[id]
	c.mu.Unlock()
	if !ok {
		return orchestrator.Snapshot{}, false
	}
	return e.run.Snapshot(), true
}

// Wait blocks until the run reaches a terminal status or ctx is done.
func (c *Coordinator) Wait(ctx context.Context, id string) (orchestrator.Snapshot, error) {
	c.mu.Lock()
	e, ok := c.runs[id]
	c.mu.Unlock()
	if !ok {
		return orchestrator.Snapshot{}, fmt.Errorf("run %s not found", id)
	}

	select {
	case <-e.run.Done():
		return e.run.Snapshot(), nil
	case <-ctx.Done():
		return e.run.Snapshot(), ctx.Err()
	}
}

// Cancel requests cancellation of a run. Takes effect at the next
// page/backoff boundary; already-stored records stay stored.
func (c *Coordinator) Cancel(id string) bool {
	c.mu.Lock()
	e, ok := c.runs[id]
	c.mu.Unlock()
	if !ok {
		return false
	}
	e.cancel()
	return true
}
