package scenario

import (
	"context"
	"errors"

	"github.com/vsinha/wareopt/pkg/application/dto"
)

// ErrResultNotFound is returned by ResultStore.Load for an unknown scenario
var ErrResultNotFound = errors.New("result not found")

// ResultStore persists plan results keyed by scenario ID. Saving an existing ID replaces it.
type ResultStore interface {
	Exists(ctx context.Context, scenarioID string) (bool, error)
	Save(ctx context.Context, result *dto.PlanResult) error
	Load(ctx context.Context, scenarioID string) (*dto.PlanResult, error)
	List(ctx context.Context) ([]string, error)
}
