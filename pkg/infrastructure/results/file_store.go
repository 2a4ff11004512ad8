package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/vsinha/wareopt/pkg/application/dto"
	"github.com/vsinha/wareopt/pkg/application/scenario"
)

const fileSuffix = ".json"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileStore writes one JSON document per scenario into a directory
type FileStore struct {
	dir string
}

var _ scenario.ResultStore = (*FileStore)(nil)

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create result directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(scenarioID string) string {
	return filepath.Join(s.dir, unsafeChars.ReplaceAllString(scenarioID, "_")+fileSuffix)
}

// Exists reports whether a result file is present for the scenario
func (s *FileStore) Exists(_ context.Context, scenarioID string) (bool, error) {
	_, err := os.Stat(s.path(scenarioID))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Save writes the result atomically through a temp file and rename
func (s *FileStore) Save(_ context.Context, result *dto.PlanResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result %s: %w", result.ScenarioID, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".result-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write result %s: %w", result.ScenarioID, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(result.ScenarioID))
}

// Load reads a stored result
func (s *FileStore) Load(_ context.Context, scenarioID string) (*dto.PlanResult, error) {
	data, err := os.ReadFile(s.path(scenarioID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", scenario.ErrResultNotFound, scenarioID)
	}
	if err != nil {
		return nil, err
	}
	var result dto.PlanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result %s: %w", scenarioID, err)
	}
	return &result, nil
}

// List returns the scenario IDs with a stored result, sorted
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		result, err := s.Load(ctx, strings.TrimSuffix(name, fileSuffix))
		if err != nil {
			return nil, err
		}
		ids = append(ids, result.ScenarioID)
	}
	sort.Strings(ids)
	return ids, nil
}
