package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/database"
)

// tx implements Tx on top of a database/sql transaction.
type tx struct {
	tx      *sql.Tx
	dialect database.Dialect
}

func (s *store) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer sqlTx.Rollback()

	if err := fn(&tx{tx: sqlTx, dialect: s.db.Dialect}); err != nil {
		log.FromContext(ctx).Debug("Rolling back transaction", "reason", err)
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *tx) GetUser(ctx context.Context, id int64) (*User, error) {
	query := t.dialect.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?" + t.dialect.ForUpdate())
	u, err := scanUser(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, UserNotFound(id)
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

func (t *tx) UpdateUserStats(ctx context.Context, u *User) error {
	query := t.dialect.Rebind(`
		UPDATE users
		SET wins = ?, losses = ?, score_for = ?, score_against = ?, version = version + 1
		WHERE id = ? AND version = ?`)

	res, err := t.tx.ExecContext(ctx, query, u.Wins, u.Losses, u.ScoreFor, u.ScoreAgainst, u.ID, u.Version)
	if err != nil {
		return fmt.Errorf("failed to update stats for user %d: %w", u.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for user %d: %w", u.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: user %d changed since it was read (version %d)", ErrConflict, u.ID, u.Version)
	}
	u.Version++
	return nil
}

func (t *tx) InsertMatch(ctx context.Context, m *Match) error {
	query := t.dialect.Rebind(`
		INSERT INTO matches (user1_id, user2_id, user1_score, user2_score, input_userid, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := t.tx.QueryRowContext(ctx, query, m.User1ID, m.User2ID, m.User1Score, m.User2Score, m.InputUserID, m.Date.Unix()).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}
