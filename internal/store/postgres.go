package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Francocima/master-skills-scraper/internal/scraper"
)

const jobsSchema = `
CREATE TABLE IF NOT EXISTS listings (
	listing_id  TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	salary      TEXT NOT NULL DEFAULT '',
	posted_text TEXT NOT NULL DEFAULT '',
	posted_at   TIMESTAMPTZ,
	job_type    TEXT NOT NULL DEFAULT '',
	summary     TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	scraped_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore backs the collection with a single listings table.
// The primary key on listing_id gives append-if-absent its atomicity.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Connection poolers in transaction mode choke on prepared
	// statements, so skip the statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if _, err := pool.Exec(ctx, jobsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure listings table: %w", err)
	}

	return &PostgresStore{db: pool}, nil
}

func (s *PostgresStore) AppendIfAbsent(ctx context.Context, job scraper.Job) (bool, error) {
	if !job.Valid() {
		return false, fmt.Errorf("record with empty listing id or non-absolute url")
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO listings (listing_id, title, company, location, salary, posted_text, posted_at, job_type, summary, url, source, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (listing_id) DO NOTHING`,
		job.ListingID, job.Title, job.Company, job.Location, job.Salary,
		job.PostedText, job.PostedAt, job.JobType, job.Summary, job.URL,
		job.Source, job.ScrapedAt)
	if err != nil {
		return false, fmt.Errorf("failed to save listing %s: %w", job.ListingID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) Contains(ctx context.Context, listingID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM listings WHERE listing_id = $1)`, listingID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check listing %s: %w", listingID, err)
	}
	return exists, nil
}

func (s *PostgresStore) ListingIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT listing_id FROM listings`)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]scraper.Job, error) {
	query := `SELECT listing_id, title, company, location, salary, posted_text, posted_at, job_type, summary, url, source, scraped_at FROM listings`
	var conds []string
	var args []any

	if f.Keywords != "" {
		for _, token := range strings.Fields(f.Keywords) {
			args = append(args, "%"+token+"%")
			conds = append(conds, fmt.Sprintf("(title || ' ' || company || ' ' || summary || ' ' || job_type) ILIKE $%d", len(args)))
		}
	}
	if f.Location != "" {
		args = append(args, "%"+f.Location+"%")
		conds = append(conds, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY scraped_at"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var jobs []scraper.Job
	for rows.Next() {
		var job scraper.Job
		if err := rows.Scan(&job.ListingID, &job.Title, &job.Company, &job.Location,
			&job.Salary, &job.PostedText, &job.PostedAt, &job.JobType,
			&job.Summary, &job.URL, &job.Source, &job.ScrapedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
