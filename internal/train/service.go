package train

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError describes a rejected input.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Service applies changes to train rows.
type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewService creates a new train service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Get retrieves a train by ID.
func (s *Service) Get(ctx context.Context, id string) (*Train, error) {
	return s.repo.FindByID(ctx, id)
}

// ApplyStatusUpdate validates update and writes it to the repository.
// On-time updates always clear the stored delay.
func (s *Service) ApplyStatusUpdate(ctx context.Context, update StatusUpdate) error {
	if err := s.validate.Struct(update); err != nil {
		return &ValidationError{Field: "statusUpdate", Err: err}
	}

	delay := update.DelayMinutes
	if update.Status == StatusOnTime {
		delay = 0
	}

	if err := s.repo.UpdateStatus(ctx, update.TrainID, update.Status, delay); err != nil {
		return fmt.Errorf("update train %s: %w", update.TrainID, err)
	}

	s.logger.Info().
		Str("train_id", update.TrainID).
		Str("status", string(update.Status)).
		Int("delay_minutes", delay).
		Msg("train status updated")

	return nil
}
