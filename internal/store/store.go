// Package store persists accepted listings. The collection is
// append-only and keyed by listing id: appending an id that is already
// present is a no-op, never an error.
package store

import (
	"context"

	"github.com/Francocima/master-skills-scraper/internal/scraper"
)

// Filter narrows List output. Zero value matches everything.
type Filter struct {
	Keywords string
	Location string
}

// Store is the durable collection shared by all runs. AppendIfAbsent
// must be atomic with respect to the presence check so concurrent runs
// cannot double-store an id.
type Store interface {
	// AppendIfAbsent stores the record unless its listing id is already
	// present. Reports whether the record was stored.
	AppendIfAbsent(ctx context.Context, job scraper.Job) (bool, error)

	// Contains reports whether a listing id has been stored.
	Contains(ctx context.Context, listingID string) (bool, error)

	// ListingIDs returns every stored id, for seeding a run's seen-set.
	ListingIDs(ctx context.Context) ([]string, error)

	// List returns stored records matching the filter.
	List(ctx context.Context, f Filter) ([]scraper.Job, error)

	Close() error
}
