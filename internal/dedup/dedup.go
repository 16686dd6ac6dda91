package dedup

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Seen is a run's listing-id set. It is seeded from the result store at
// run start so listings collected by earlier runs are dropped too, and
// grows monotonically while the run walks pages.
//
// The underlying set is thread-safe, so marking an id and checking it
// is a single atomic step: two callers racing on the same listing can
// never both win MarkSeen.
type Seen struct {
	ids mapset.Set[string]
}

func NewSeen() *Seen {
	return &Seen{ids: mapset.NewSet[string]()}
}

// Seed preloads ids collected by earlier runs.
func (s *Seen) Seed(ids []string) {
	for _, id := range ids {
		s.ids.Add(id)
	}
}

// IsDuplicate reports membership without mutating the set.
func (s *Seen) IsDuplicate(id string) bool {
	return s.ids.Contains(id)
}

// MarkSeen inserts the id and reports whether it was new. Callers mark
// before storing, so a duplicate can never slip past between the check
// and the append.
func (s *Seen) MarkSeen(id string) bool {
	return s.ids.Add(id)
}

// Len is the number of distinct ids seen so far, seeds included.
func (s *Seen) Len() int {
	return s.ids.Cardinality()
}
