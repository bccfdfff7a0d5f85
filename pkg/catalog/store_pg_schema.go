package catalog

import "context"

// migrate creates the runs table
func (s *PGStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS swarm_runs (
		run_id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		state TEXT NOT NULL,
		turns INTEGER NOT NULL,
		coverage DOUBLE PRECISION NOT NULL,
		digest TEXT NOT NULL,
		seed BIGINT NOT NULL,
		policy TEXT NOT NULL,
		agents INTEGER NOT NULL,
		output TEXT,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_swarm_runs_scenario ON swarm_runs(scenario);
	CREATE INDEX IF NOT EXISTS idx_swarm_runs_created_at ON swarm_runs(created_at);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}
