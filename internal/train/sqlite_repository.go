package train

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS trains (
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
		updated_at     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS trains_destination_idx ON trains (destination, status)`,
}

// OpenSQLite opens a SQLite database at path with WAL journaling.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_journal=WAL&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// SQLiteRepository is a SQLite implementation of Repository.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite train repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// EnsureSchema creates the trains table if it does not exist.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create trains schema: %w", err)
		}
	}
	return nil
}

// FindByID retrieves a train by ID.
func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*Train, error) {
	query := `
		SELECT
			id, train_number, train_name, status, delay_minutes,
			departure_time, arrival_time, source, destination, station_name,
			updated_at
		FROM trains
		WHERE id = ?
	`

	t, err := scanSQLiteTrain(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainNotFound
		}
		return nil, fmt.Errorf("failed to query train: %w", err)
	}

	return t, nil
}

// FindActiveByDestination retrieves non-cancelled trains heading to destination.
func (r *SQLiteRepository) FindActiveByDestination(ctx context.Context, destination, excludeID string) ([]*Train, error) {
	query := `
		SELECT
			id, train_number, train_name, status, delay_minutes,
			departure_time, arrival_time, source, destination, station_name,
			updated_at
		FROM trains
		WHERE destination = ? AND id <> ? AND status <> 'cancelled'
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, destination, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trains: %w", err)
	}
	defer rows.Close()

	var trains []*Train
	for rows.Next() {
		t, err := scanSQLiteTrain(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan train row: %w", err)
		}
		trains = append(trains, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating train rows: %w", err)
	}

	return trains, nil
}

// Upsert creates or replaces a train.
func (r *SQLiteRepository) Upsert(ctx context.Context, t *Train) error {
	query := `
		INSERT INTO trains (
			id, train_number, train_name, status, delay_minutes,
			departure_time, arrival_time, source, destination, station_name,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			train_number = excluded.train_number,
			train_name = excluded.train_name,
			status = excluded.status,
			delay_minutes = excluded.delay_minutes,
			departure_time = excluded.departure_time,
			arrival_time = excluded.arrival_time,
			source = excluded.source,
			destination = excluded.destination,
			station_name = excluded.station_name,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
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
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert train: %w", err)
	}
	return nil
}

// UpdateStatus changes the status and delay of a train.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status Status, delayMinutes int) error {
	query := `UPDATE trains SET status = ?, delay_minutes = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		string(status), delayMinutes, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to update train status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrTrainNotFound
	}

	return nil
}

// Ping verifies the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type sqliteScanner interface {
	Scan(dest ...any) error
}

// scanSQLiteTrain scans a train row. SQLite stores updated_at as an RFC3339 string.
func scanSQLiteTrain(row sqliteScanner) (*Train, error) {
	var t Train
	var status, updatedAt string

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
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = Status(status)
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		t.UpdatedAt = ts
	}
	return &t, nil
}

// Ensure SQLiteRepository implements Repository interface.
var _ Repository = (*SQLiteRepository)(nil)
