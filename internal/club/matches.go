package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const matchColumns = "id, user1_id, user2_id, user1_score, user2_score, input_userid, created_at"

func scanMatch(row scanner) (*Match, error) {
	var m Match
	var createdAt int64
	err := row.Scan(&m.ID, &m.User1ID, &m.User2ID, &m.User1Score, &m.User2Score, &m.InputUserID, &createdAt)
	if err != nil {
		return nil, err
	}
	m.Date = time.Unix(createdAt, 0).UTC()
	return &m, nil
}

func (s *store) GetMatch(ctx context.Context, id int64) (*Match, error) {
	query := s.db.Dialect.Rebind("SELECT " + matchColumns + " FROM matches WHERE id = ?")
	m, err := scanMatch(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, MatchNotFound(id)
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

// ListMatches returns every match ordered by id.
func (s *store) ListMatches(ctx context.Context) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+matchColumns+" FROM matches ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}
	return matches, nil
}
