package club

import "context"

// ClubStore defines the interface for interacting with users and matches.
type ClubStore interface {
	CreateUser(ctx context.Context, name, team string) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUserName(ctx context.Context, id int64, name string) (*User, error)
	DeleteUser(ctx context.Context, id int64) (*User, error)
	GetMatch(ctx context.Context, id int64) (*Match, error)
	ListMatches(ctx context.Context) ([]Match, error)
	// WithTx runs fn inside a single transaction. Every write made through
	// the Tx is committed if fn returns nil and discarded otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	Clear(ctx context.Context) error
}

// Tx is the set of operations available inside WithTx.
type Tx interface {
	// GetUser reads a user and, where the dialect supports it, locks the row
	// until the transaction ends.
	GetUser(ctx context.Context, id int64) (*User, error)
	// UpdateUserStats writes the user's counters if the stored version still
	// equals u.Version and advances u.Version. A stale version yields ErrConflict.
	UpdateUserStats(ctx context.Context, u *User) error
	// InsertMatch persists m and fills in its ID.
	InsertMatch(ctx context.Context, m *Match) error
}
