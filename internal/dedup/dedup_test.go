package dedup

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkSeenReportsFirstWinOnly(t *testing.T) {
	seen := NewSeen()

	assert.True(t, seen.MarkSeen("84392017"))
	assert.False(t, seen.MarkSeen("84392017"))
	assert.True(t, seen.IsDuplicate("84392017"))
	assert.False(t, seen.IsDuplicate("84392018"))
	assert.Equal(t, 1, seen.Len())
}

func TestSeedCountsAsSeen(t *testing.T) {
	seen := NewSeen()
	seen.Seed([]string{"a", "b"})

	assert.False(t, seen.MarkSeen("a"), "seeded ids are duplicates")
	assert.True(t, seen.MarkSeen("c"))
	assert.Equal(t, 3, seen.Len())
}

func TestMarkSeenHasExactlyOneWinnerUnderRace(t *testing.T) {
	seen := NewSeen()

	const goroutines = 32
	wins := make(chan bool, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- seen.MarkSeen("contested")
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestDistinctIdsAllWin(t *testing.T) {
	seen := NewSeen()
	for i := 0; i < 100; i++ {
		assert.True(t, seen.MarkSeen(fmt.Sprintf("id-%d", i)))
	}
	assert.Equal(t, 100, seen.Len())
}
