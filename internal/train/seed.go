package train

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SeedFile is the on-disk layout of a train fixture file.
type SeedFile struct {
	Trains []*Train `yaml:"trains" validate:"dive"`
}

// LoadSeedFile reads and validates trains from a YAML file.
func LoadSeedFile(path string) ([]*Train, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates trains from YAML.
func ParseSeed(data []byte) ([]*Train, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	seen := make(map[string]struct{}, len(seed.Trains))
	for i, t := range seed.Trains {
		if t == nil {
			return nil, fmt.Errorf("train %d: empty entry", i)
		}
		if err := validate.Struct(t); err != nil {
			return nil, &ValidationError{Field: fmt.Sprintf("trains[%d]", i), Err: err}
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("train %d: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	return seed.Trains, nil
}

// Seed writes trains into repo.
func Seed(ctx context.Context, repo Repository, trains []*Train) error {
	for _, t := range trains {
		if err := repo.Upsert(ctx, t); err != nil {
			return fmt.Errorf("seed train %s: %w", t.ID, err)
		}
	}
	return nil
}
