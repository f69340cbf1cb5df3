package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Operation kinds recorded in the audit log.
const (
	OperationEnrich  = "ENRICH"
	OperationCleanup = "CLEANUP"
)

// Operation statuses
const (
	StatusSuccess = "SUCCESS"
	StatusSkipped = "SKIPPED"
	StatusFailed  = "FAILED"
)

// OperationLog is one audited enrichment or cleanup operation. The
// profile reference is stored hashed; raw emails never reach the
// database.
type OperationLog struct {
	ID           int64     `db:"id" json:"id"`
	ProfileHash  string    `db:"profile_hash" json:"profile_hash"`
	ProductID    string    `db:"product_id" json:"product_id"`
	Operation    string    `db:"operation" json:"operation"`
	Status       string    `db:"status" json:"status"`
	SimilarCount int       `db:"similar_count" json:"similar_count"`
	DurationMs   int64     `db:"duration_ms" json:"duration_ms"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordOperation appends an entry to the enrichment audit log.
func (s *Store) RecordOperation(ctx context.Context, entry *OperationLog) error {
	query := `
		INSERT INTO enrichment_log (profile_hash, product_id, operation, status, similar_count, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, entry, query,
		entry.ProfileHash, entry.ProductID, entry.Operation,
		entry.Status, entry.SimilarCount, entry.DurationMs)
}

// ListByProfileHash returns the most recent audit entries for a
// hashed profile reference, newest first.
func (s *Store) ListByProfileHash(ctx context.Context, profileHash string, limit int) ([]OperationLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var entries []OperationLog
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM enrichment_log WHERE profile_hash = $1 ORDER BY created_at DESC LIMIT $2",
		profileHash, limit)
	return entries, err
}
