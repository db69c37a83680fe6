package train

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresSchema creates the trains table used by PostgresRepository.
const postgresSchema = `
	CREATE TABLE IF NOT EXISTS trains (
		id             TEXT PRIMARY KEY,
		train_number   TEXT NOT NULL,
		train_name     TEXT NOT NULL,
		status         TEXT NOT NULL,
		delay_minutes  INTEGER NOT NULL DEFAULT 0,
		departure_time TEXT NOT NULL,
		arrival_time   TEXT NOT NULL DEFAULT '',
		source         TEXT NOT NULL DEFAULT '',
		destination    TEXT NOT NULL,
		station_name   TEXT NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS trains_destination_idx ON trains (destination, status);
`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL train repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the trains table if it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create trains schema: %w", err)
	}
	return nil
}

// FindByID retrieves a train by ID.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*Train, error) {
	query := `
		SELECT
			id, train_number, train_name, status, delay_minutes,
			departure_time, arrival_time, source, destination, station_name,
			updated_at
		FROM trains
		WHERE id = $1
	`

	t, err := scanTrain(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTrainNotFound
		}
		return nil, err
	}

	return t, nil
}

// FindActiveByDestination retrieves non-cancelled trains heading to destination.
func (r *PostgresRepository) FindActiveByDestination(ctx context.Context, destination, excludeID string) ([]*Train, error) {
	query := `
		SELECT
			id, train_number, train_name, status, delay_minutes,
			departure_time, arrival_time, source, destination, station_name,
			updated_at
		FROM trains
		WHERE destination = $1 AND id <> $2 AND status <> 'cancelled'
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, destination, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trains []*Train
	for rows.Next() {
		t, err := scanTrain(rows)
		if err != nil {
			return nil, err
		}
		trains = append(trains, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trains, nil
}

// Upsert creates or replaces a train.
func (r *PostgresRepository) Upsert(ctx context.Context, t *Train) error {
	query := `
		INSERT INTO trains (
			id, train_number, train_name, status, delay_minutes,
			departure_time, arrival_time, source, destination, station_name,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (id) DO UPDATE SET
			train_number = EXCLUDED.train_number,
			train_name = EXCLUDED.train_name,
			status = EXCLUDED.status,
			delay_minutes = EXCLUDED.delay_minutes,
			departure_time = EXCLUDED.departure_time,
			arrival_time = EXCLUDED.arrival_time,
			source = EXCLUDED.source,
			destination = EXCLUDED.destination,
			station_name = EXCLUDED.station_name,
			updated_at = now()
	`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.TrainNumber,
		t.TrainName,
		string(t.Status),
		t.DelayMinutes,
		t.DepartureTime,
		t.ArrivalTime,
		t.Source,
		t.Destination,
		t.StationName,
	)
	return err
}

// UpdateStatus changes the status and delay of a train.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status, delayMinutes int) error {
	query := `
		UPDATE trains SET
			status = $2,
			delay_minutes = $3,
			updated_at = now()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, string(status), delayMinutes)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrTrainNotFound
	}

	return nil
}

// Ping verifies the database connection.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// scanTrain scans a train from a single row.
func scanTrain(row pgx.Row) (*Train, error) {
	var t Train
	var status string

	err := row.Scan(
		&t.ID,
		&t.TrainNumber,
		&t.TrainName,
		&status,
		&t.DelayMinutes,
		&t.DepartureTime,
		&t.ArrivalTime,
		&t.Source,
		&t.Destination,
		&t.StationName,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = Status(status)
	return &t, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
