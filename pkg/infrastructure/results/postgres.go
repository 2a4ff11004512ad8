package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vsinha/wareopt/pkg/application/dto"
	"github.com/vsinha/wareopt/pkg/application/scenario"
)

const schema = `
CREATE TABLE IF NOT EXISTS plan_results (
	scenario_id   TEXT PRIMARY KEY,
	status        TEXT NOT NULL,
	objective     DOUBLE PRECISION NOT NULL,
	solve_time_ms BIGINT NOT NULL,
	result        JSONB NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPool connects to Postgres and checks the connection
func NewPool(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	if connStr == "" {
		return nil, fmt.Errorf("database url not set")
	}

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// PostgresStore keeps results in the plan_results table, one row per scenario
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ scenario.ResultStore = (*PostgresStore)(nil)

// NewPostgresStore creates the table if it does not exist
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create plan_results table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Exists reports whether a row exists for the scenario
func (s *PostgresStore) Exists(ctx context.Context, scenarioID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM plan_results WHERE scenario_id = $1)", scenarioID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check result %s: %w", scenarioID, err)
	}
	return exists, nil
}

// Save upserts the result
func (s *PostgresStore) Save(ctx context.Context, result *dto.PlanResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result %s: %w", result.ScenarioID, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO plan_results (scenario_id, status, objective, solve_time_ms, result)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (scenario_id) DO UPDATE SET
			status = EXCLUDED.status,
			objective = EXCLUDED.objective,
			solve_time_ms = EXCLUDED.solve_time_ms,
			result = EXCLUDED.result,
			updated_at = now()`,
		result.ScenarioID, result.Status, result.Objective, result.SolveTime.Milliseconds(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save result %s: %w", result.ScenarioID, err)
	}
	return nil
}

// Load reads a stored result
func (s *PostgresStore) Load(ctx context.Context, scenarioID string) (*dto.PlanResult, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		"SELECT result FROM plan_results WHERE scenario_id = $1", scenarioID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", scenario.ErrResultNotFound, scenarioID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load result %s: %w", scenarioID, err)
	}

	var result dto.PlanResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result %s: %w", scenarioID, err)
	}
	return &result, nil
}

// List returns the stored scenario IDs, sorted
func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT scenario_id FROM plan_results ORDER BY scenario_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return ids, nil
}
