package train

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/trainreroute/trainreroute/internal/resilience"
)

// ResilientRepositoryName is the registry name of the guarded train store.
const ResilientRepositoryName = "train-repository"

// ResilientRepository wraps a Repository with a circuit breaker and retries.
// ErrTrainNotFound is treated as a normal answer, not a failure.
type ResilientRepository struct {
	next     Repository
	guard    *resilience.Guard
	registry *resilience.Registry
	logger   zerolog.Logger
}

// ResilientRepositoryConfig holds configuration for ResilientRepository.
type ResilientRepositoryConfig struct {
	// Guard overrides the default guard configuration.
	Guard *resilience.GuardConfig

	// Registry receives health updates. Optional.
	Registry *resilience.Registry

	Logger zerolog.Logger
}

// NewResilientRepository wraps next with retry and circuit breaking.
func NewResilientRepository(next Repository, cfg ResilientRepositoryConfig) *ResilientRepository {
	guardCfg := resilience.DefaultGuardConfig(ResilientRepositoryName)
	if cfg.Guard != nil {
		guardCfg = *cfg.Guard
	}
	if guardCfg.Name == "" {
		guardCfg.Name = ResilientRepositoryName
	}
	guardCfg.Permanent = isPermanent

	guard := resilience.NewGuard(guardCfg)
	if cfg.Registry != nil {
		cfg.Registry.Register(guard)
	}

	return &ResilientRepository{
		next:     next,
		guard:    guard,
		registry: cfg.Registry,
		logger:   cfg.Logger,
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, ErrTrainNotFound) || errors.Is(err, context.Canceled)
}

// FindByID retrieves a train by ID.
func (r *ResilientRepository) FindByID(ctx context.Context, id string) (*Train, error) {
	t, err := resilience.Do(ctx, r.guard, func(ctx context.Context) (*Train, error) {
		return r.next.FindByID(ctx, id)
	})
	r.record("find_by_id", err)
	return t, err
}

// FindActiveByDestination retrieves non-cancelled trains heading to destination.
func (r *ResilientRepository) FindActiveByDestination(ctx context.Context, destination, excludeID string) ([]*Train, error) {
	trains, err := resilience.Do(ctx, r.guard, func(ctx context.Context) ([]*Train, error) {
		return r.next.FindActiveByDestination(ctx, destination, excludeID)
	})
	r.record("find_active_by_destination", err)
	return trains, err
}

// Upsert creates or replaces a train.
func (r *ResilientRepository) Upsert(ctx context.Context, t *Train) error {
	err := resilience.Run(ctx, r.guard, func(ctx context.Context) error {
		return r.next.Upsert(ctx, t)
	})
	r.record("upsert", err)
	return err
}

// UpdateStatus changes the status and delay of a train.
func (r *ResilientRepository) UpdateStatus(ctx context.Context, id string, status Status, delayMinutes int) error {
	err := resilience.Run(ctx, r.guard, func(ctx context.Context) error {
		return r.next.UpdateStatus(ctx, id, status, delayMinutes)
	})
	r.record("update_status", err)
	return err
}

// Ping checks the underlying store without retries.
func (r *ResilientRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

// Guard returns the guard protecting the underlying store.
func (r *ResilientRepository) Guard() *resilience.Guard {
	return r.guard
}

func (r *ResilientRepository) record(op string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if err == nil || errors.Is(err, ErrTrainNotFound) {
		if r.registry != nil {
			r.registry.RecordSuccess(r.guard.Name())
		}
		return
	}

	r.logger.Warn().
		Err(err).
		Str("operation", op).
		Str("circuit_state", r.guard.CircuitBreakerState().String()).
		Msg("train repository call failed")

	if r.registry != nil {
		r.registry.RecordFailure(r.guard.Name(), err)
	}
}

// Ensure ResilientRepository implements Repository interface.
var _ Repository = (*ResilientRepository)(nil)
