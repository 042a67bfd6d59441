package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/database"
)

const userColumns = "id, name, team, wins, losses, score_for, score_against, version"

// New creates a new ClubStore.
func New(db *database.DB) ClubStore {
	return &store{
		db: db,
	}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Team, &u.Wins, &u.Losses, &u.ScoreFor, &u.ScoreAgainst, &u.Version)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser registers a new user with all counters at zero.
func (s *store) CreateUser(ctx context.Context, name, team string) (*User, error) {
	query := s.db.Dialect.Rebind(`
		INSERT INTO users (name, team, wins, losses, score_for, score_against, version, created_at)
		VALUES (?, ?, 0, 0, 0, 0, 0, ?)
		RETURNING ` + userColumns)

	u, err := scanUser(s.db.QueryRowContext(ctx, query, name, team, time.Now().UTC().Unix()))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.FromContext(ctx).Info("Registered new user", "userID", u.ID, "name", u.Name, "team", u.Team)
	return u, nil
}

func (s *store) GetUser(ctx context.Context, id int64) (*User, error) {
	query := s.db.Dialect.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")
	u, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, UserNotFound(id)
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

// ListUsers returns every user ordered by id.
func (s *store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		log.FromContext(ctx).Error("Failed to query all users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// UpdateUserName changes only the name; counters are owned by match registration.
func (s *store) UpdateUserName(ctx context.Context, id int64, name string) (*User, error) {
	query := s.db.Dialect.Rebind("UPDATE users SET name = ? WHERE id = ? RETURNING " + userColumns)
	u, err := scanUser(s.db.QueryRowContext(ctx, query, name, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, UserNotFound(id)
		}
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	log.FromContext(ctx).Info("Renamed user", "userID", id, "name", name)
	return u, nil
}

// DeleteUser removes the user and returns the record as it was before deletion.
// Matches referencing the user are left untouched.
func (s *store) DeleteUser(ctx context.Context, id int64) (*User, error) {
	query := s.db.Dialect.Rebind("DELETE FROM users WHERE id = ? RETURNING " + userColumns)
	u, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, UserNotFound(id)
		}
		return nil, fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	log.FromContext(ctx).Info("Deleted user", "userID", id, "name", u.Name)
	return u, nil
}

// Clear removes all users and matches.
func (s *store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM matches"); err != nil {
		return fmt.Errorf("failed to clear matches table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users"); err != nil {
		return fmt.Errorf("failed to clear users table: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	log.FromContext(ctx).Info("Store cleared")
	return nil
}
