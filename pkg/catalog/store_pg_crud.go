package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const entryColumns = `run_id, scenario, state, turns, coverage, digest, seed, policy, agents, output, created_at`

// Put inserts or replaces an entry
func (s *PGStore) Put(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO swarm_runs (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (run_id) DO UPDATE SET
			scenario = EXCLUDED.scenario,
			state = EXCLUDED.state,
			turns = EXCLUDED.turns,
			coverage = EXCLUDED.coverage,
			digest = EXCLUDED.digest,
			seed = EXCLUDED.seed,
			policy = EXCLUDED.policy,
			agents = EXCLUDED.agents,
			output = EXCLUDED.output,
			created_at = EXCLUDED.created_at
	`

	_, err := s.pool.Exec(ctx, query,
		e.RunID,
		e.Scenario,
		e.State,
		e.Turns,
		e.Coverage,
		e.Digest,
		e.Seed,
		e.Policy,
		e.Agents,
		e.Output,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	return nil
}

// Get retrieves an entry by run id
func (s *PGStore) Get(ctx context.Context, runID string) (*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM swarm_runs WHERE run_id = $1`

	e, err := scanEntry(s.pool.QueryRow(ctx, query, runID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return e, nil
}

// List returns matching entries, newest first
func (s *PGStore) List(ctx context.Context, f Filter) ([]*Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM swarm_runs
		WHERE ($1 = '' OR scenario = $1) AND ($2 = '' OR state = $2)
		ORDER BY created_at DESC, run_id
	`
	args := []any{f.Scenario, f.State}
	if f.Limit > 0 {
		query += ` LIMIT $3`
		args = append(args, f.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntry(row pgx.Row) (*Entry, error) {
	e := &Entry{}
	var output *string
	err := row.Scan(
		&e.RunID,
		&e.Scenario,
		&e.State,
		&e.Turns,
		&e.Coverage,
		&e.Digest,
		&e.Seed,
		&e.Policy,
		&e.Agents,
		&output,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if output != nil {
		e.Output = *output
	}
	return e, nil
}
