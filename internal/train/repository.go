package train

import "context"

// Repository defines the interface for train data access.
type Repository interface {
	// FindByID retrieves a train row by ID.
	// Returns ErrTrainNotFound if the train doesn't exist.
	FindByID(ctx context.Context, id string) (*Train, error)

	// FindActiveByDestination retrieves every train row heading to destination
	// that is not cancelled, excluding the row with excludeID.
	FindActiveByDestination(ctx context.Context, destination, excludeID string) ([]*Train, error)

	// Upsert creates or replaces a train row.
	Upsert(ctx context.Context, t *Train) error

	// UpdateStatus changes the status and delay of a train row.
	// Returns ErrTrainNotFound if the train doesn't exist.
	UpdateStatus(ctx context.Context, id string, status Status, delayMinutes int) error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
