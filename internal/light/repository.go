package light

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for light persistence.
type Repository interface {
	Create(ctx context.Context, l *Light) error
	GetByID(ctx context.Context, id string) (*Light, error)
	GetByName(ctx context.Context, name string) (*Light, error)
	List(ctx context.Context) ([]Light, error)
	Update(ctx context.Context, l *Light) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed light repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const lightColumns = "id, name, is_powered_on, created_at, updated_at"

// Create inserts a new light. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, l *Light) error {
	if l.ID == "" {
		l.ID = "lgt-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	l.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	l.UpdatedAt = l.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lights (id, name, is_powered_on, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.Name, boolToInt(l.IsPoweredOn), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrLightExists
		}
		return fmt.Errorf("%w: creating light: %w", ErrDataIntegrity, err)
	}

	return nil
}

// GetByID retrieves a light by its unique ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Light, error) {
	return r.getLight(ctx, "SELECT "+lightColumns+" FROM lights WHERE id = ?", id)
}

// GetByName retrieves a light by its unique name.
func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*Light, error) {
	return r.getLight(ctx, "SELECT "+lightColumns+" FROM lights WHERE name = ?", name)
}

// List returns all lights ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Light, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+lightColumns+" FROM lights ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("listing lights: %w", err)
	}
	defer rows.Close()

	var lights []Light
	for rows.Next() {
		l, err := scanLightFrom(rows)
		if err != nil {
			return nil, err
		}
		lights = append(lights, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lights: %w", err)
	}

	if lights == nil {
		lights = []Light{}
	}
	return lights, nil
}

// Update modifies a light's name and power state.
func (r *SQLiteRepository) Update(ctx context.Context, l *Light) error {
	now := time.Now().UTC().Format(time.RFC3339)
	l.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		`UPDATE lights SET name = ?, is_powered_on = ?, updated_at = ? WHERE id = ?`,
		l.Name, boolToInt(l.IsPoweredOn), now, l.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrLightExists
		}
		return fmt.Errorf("%w: updating light: %w", ErrDataIntegrity, err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrLightNotFound
	}
	return nil
}

// Delete removes a light by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM lights WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting light: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrLightNotFound
	}
	return nil
}

// DeleteAll removes every light.
func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM lights"); err != nil {
		return fmt.Errorf("deleting lights: %w", err)
	}
	return nil
}

// Count returns the total number of lights.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lights").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting lights: %w", err)
	}
	return count, nil
}

// getLight executes a query and scans a single light result.
func (r *SQLiteRepository) getLight(ctx context.Context, query string, args ...any) (*Light, error) {
	return scanLightFrom(r.db.QueryRowContext(ctx, query, args...))
}

// scanner is an interface over sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanLightFrom scans a light from any scanner (Row or Rows).
func scanLightFrom(s scanner) (*Light, error) {
	var l Light
	var isPoweredOn int
	var createdAt, updatedAt string

	err := s.Scan(&l.ID, &l.Name, &isPoweredOn, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLightNotFound
		}
		return nil, fmt.Errorf("scanning light: %w", err)
	}

	l.IsPoweredOn = isPoweredOn != 0
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	l.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &l, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "unique constraint"))
}
