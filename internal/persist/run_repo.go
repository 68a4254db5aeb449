package persist

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// RunRecord is the outcome of one simulation run.
type RunRecord struct {
	RunID     uuid.UUID
	Scenario  string
	StartedAt time.Time
	Ticks     int64
	Live      int
	Checksum  uint64
	Counters  map[string]int64
}

// RunRepo records finished runs for later comparison.
type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Record writes the run and its counters atomically.
func (r *RunRepo) Record(ctx context.Context, rec RunRecord) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("run begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO runs (run_id, scenario, started_at, ticks, live, checksum)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6)`,
		rec.RunID.String(), rec.Scenario, rec.StartedAt, rec.Ticks, rec.Live,
		strconv.FormatUint(rec.Checksum, 16),
	); err != nil {
		return fmt.Errorf("run insert: %w", err)
	}
	for name, v := range rec.Counters {
		if _, err := tx.Exec(ctx,
			`INSERT INTO run_counters (run_id, name, value) VALUES ($1::uuid, $2, $3)`,
			rec.RunID.String(), name, v,
		); err != nil {
			return fmt.Errorf("run counter %s: %w", name, err)
		}
	}

	return tx.Commit(ctx)
}

// Checksum returns the recorded final checksum of a run.
func (r *RunRepo) Checksum(ctx context.Context, id uuid.UUID) (uint64, error) {
	var hex string
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT checksum FROM runs WHERE run_id = $1::uuid`, id.String(),
	).Scan(&hex); err != nil {
		return 0, fmt.Errorf("run checksum: %w", err)
	}
	return strconv.ParseUint(hex, 16, 64)
}
