package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/Francocima/master-skills-scraper/internal/filter"
	"github.com/Francocima/master-skills-scraper/internal/scraper"
)

// JSONLStore keeps one JSON record per line in a plain file, so
// operators can audit results with grep and wc -l. An in-memory id
// index backs the append-if-absent check; the file itself is replayed
// at open to rebuild it after a restart.
type JSONLStore struct {
	mu   sync.Mutex
	path string
	file *os.File
	ids  map[string]struct{}
}

func NewJSONLStore(path string) (*JSONLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create results directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}

	s := &JSONLStore{
		path: path,
		file: file,
		ids:  make(map[string]struct{}),
	}
	if err := s.replay(); err != nil {
		file.Close()
		return nil, err
	}

	log.Printf("📋 Loaded %d previously stored listings from %s", len(s.ids), path)
	return s, nil
}

// replay rebuilds the id index from the file. Lines that fail to parse
// are skipped, not fatal: a truncated last line must not brick the
// whole collection.
func (s *JSONLStore) replay() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("replay results file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var job scraper.Job
		if err := json.Unmarshal(scanner.Bytes(), &job); err != nil {
			log.Printf("⚠️ Skipping unparseable line in %s: %v", s.path, err)
			continue
		}
		if job.ListingID != "" {
			s.ids[job.ListingID] = struct{}{}
		}
	}
	return scanner.Err()
}

func (s *JSONLStore) AppendIfAbsent(_ context.Context, job scraper.Job) (bool, error) {
	if !job.Valid() {
		return false, fmt.Errorf("record with empty listing id or non-absolute url")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[job.ListingID]; ok {
		return false, nil
	}

	data, err := json.Marshal(job)
	if err != nil {
		return false, fmt.Errorf("marshal listing %s: %w", job.ListingID, err)
	}
	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return false, fmt.Errorf("append listing %s: %w", job.ListingID, err)
	}

	s.ids[job.ListingID] = struct{}{}
	return true, nil
}

func (s *JSONLStore) Contains(_ context.Context, listingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[listingID]
	return ok, nil
}

func (s *JSONLStore) ListingIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids, nil
}

// List re-reads the file so results come back in insertion order.
func (s *JSONLStore) List(_ context.Context, f Filter) ([]scraper.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}
	defer file.Close()

	var jobs []scraper.Job
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var job scraper.Job
		if err := json.Unmarshal(scanner.Bytes(), &job); err != nil {
			continue
		}
		if filter.Matches(job, f.Keywords, f.Location) {
			jobs = append(jobs, job)
		}
	}
	return jobs, scanner.Err()
}

func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
