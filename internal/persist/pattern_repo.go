package persist

import (
	"context"
	"fmt"

	"github.com/barrage/server/internal/data"
)

// PatternRepo stores named action programs.
type PatternRepo struct {
	db *DB
}

func NewPatternRepo(db *DB) *PatternRepo {
	return &PatternRepo{db: db}
}

// LoadAll returns every pattern with its steps in sequence order.
func (r *PatternRepo) LoadAll(ctx context.Context) ([]data.PatternEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT p.name, p.repeat, p.units, p.note,
		        s.effect, s.value, s.offset_x, s.offset_y, s.duration
		 FROM patterns p
		 JOIN pattern_steps s ON s.pattern_name = p.name
		 ORDER BY p.name, s.seq`)
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	defer rows.Close()

	var entries []data.PatternEntry
	for rows.Next() {
		var (
			name, units, note string
			repeat            bool
			step              data.StepEntry
			ox, oy            *float32
		)
		if err := rows.Scan(&name, &repeat, &units, &note,
			&step.Effect, &step.Value, &ox, &oy, &step.Duration); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		if ox != nil && oy != nil {
			step.Offset = []float32{*ox, *oy}
		}
		if n := len(entries); n == 0 || entries[n-1].Name != name {
			entries = append(entries, data.PatternEntry{Name: name, Repeat: repeat, Units: units, Note: note})
		}
		last := &entries[len(entries)-1]
		last.Steps = append(last.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	return entries, nil
}

// Upsert replaces each named pattern and its steps in one transaction.
// Patterns not named are left alone.
func (r *PatternRepo) Upsert(ctx context.Context, entries []data.PatternEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("patterns begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO patterns (name, repeat, units, note, updated_at)
			 VALUES ($1, $2, $3, $4, now())
			 ON CONFLICT (name) DO UPDATE
			 SET repeat = EXCLUDED.repeat, units = EXCLUDED.units,
			     note = EXCLUDED.note, updated_at = now()`,
			e.Name, e.Repeat, e.Units, e.Note,
		); err != nil {
			return fmt.Errorf("upsert pattern %s: %w", e.Name, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM pattern_steps WHERE pattern_name = $1`, e.Name); err != nil {
			return fmt.Errorf("clear steps %s: %w", e.Name, err)
		}
		for seq, s := range e.Steps {
			var ox, oy *float32
			if len(s.Offset) == 2 {
				ox, oy = &s.Offset[0], &s.Offset[1]
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO pattern_steps (pattern_name, seq, effect, value, offset_x, offset_y, duration)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				e.Name, seq, s.Effect, s.Value, ox, oy, s.Duration,
			); err != nil {
				return fmt.Errorf("insert step %s/%d: %w", e.Name, seq, err)
			}
		}
	}

	return tx.Commit(ctx)
}

// Delete removes a pattern and its steps.
func (r *PatternRepo) Delete(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM patterns WHERE name = $1`, name)
	return err
}
