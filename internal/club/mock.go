package club

import (
	"context"
	"sync"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateUserFunc     func(ctx context.Context, name, team string) (*User, error)
	GetUserFunc        func(ctx context.Context, id int64) (*User, error)
	ListUsersFunc      func(ctx context.Context) ([]User, error)
	UpdateUserNameFunc func(ctx context.Context, id int64, name string) (*User, error)
	DeleteUserFunc     func(ctx context.Context, id int64) (*User, error)
	GetMatchFunc       func(ctx context.Context, id int64) (*Match, error)
	ListMatchesFunc    func(ctx context.Context) ([]Match, error)
	WithTxFunc         func(ctx context.Context, fn func(tx Tx) error) error
	ClearFunc          func(ctx context.Context) error

	// Tx is handed to fn by WithTx when WithTxFunc is not set.
	Tx *MockTx

	// Call records
	CreateUserCalls []struct {
		Name string
		Team string
	}
	UpdateUserNameCalls []struct {
		ID   int64
		Name string
	}
	DeleteUserCalls []int64
	WithTxCalls     int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{Tx: NewMockTx()}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateUserCalls = nil
	m.UpdateUserNameCalls = nil
	m.DeleteUserCalls = nil
	m.WithTxCalls = 0
}

func (m *MockStore) CreateUser(ctx context.Context, name, team string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateUserCalls = append(m.CreateUserCalls, struct {
		Name string
		Team string
	}{name, team})
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, name, team)
	}
	return &User{Name: name, Team: team}, nil
}

func (m *MockStore) GetUser(ctx context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return nil, UserNotFound(id)
}

func (m *MockStore) ListUsers(ctx context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return []User{}, nil
}

func (m *MockStore) UpdateUserName(ctx context.Context, id int64, name string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateUserNameCalls = append(m.UpdateUserNameCalls, struct {
		ID   int64
		Name string
	}{id, name})
	if m.UpdateUserNameFunc != nil {
		return m.UpdateUserNameFunc(ctx, id, name)
	}
	return nil, UserNotFound(id)
}

func (m *MockStore) DeleteUser(ctx context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteUserCalls = append(m.DeleteUserCalls, id)
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id)
	}
	return nil, UserNotFound(id)
}

func (m *MockStore) GetMatch(ctx context.Context, id int64) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(ctx, id)
	}
	return nil, MatchNotFound(id)
}

func (m *MockStore) ListMatches(ctx context.Context) ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListMatchesFunc != nil {
		return m.ListMatchesFunc(ctx)
	}
	return []Match{}, nil
}

// WithTx does not hold the mock's lock while fn runs so fn may call back
// into the mock.
func (m *MockStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	m.WithTxCalls++
	f := m.WithTxFunc
	tx := m.Tx
	m.mu.Unlock()

	if f != nil {
		return f(ctx, fn)
	}
	if tx == nil {
		tx = NewMockTx()
	}
	return fn(tx)
}

func (m *MockStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	return nil
}

// MockTx is a mock implementation of Tx. It is safe for concurrent use.
type MockTx struct {
	mu sync.Mutex

	GetUserFunc         func(ctx context.Context, id int64) (*User, error)
	UpdateUserStatsFunc func(ctx context.Context, u *User) error
	InsertMatchFunc     func(ctx context.Context, m *Match) error

	GetUserCalls         []int64
	UpdateUserStatsCalls []User
	InsertMatchCalls     []Match
}

// NewMockTx creates a new mock transaction.
func NewMockTx() *MockTx {
	return &MockTx{}
}

func (m *MockTx) GetUser(ctx context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetUserCalls = append(m.GetUserCalls, id)
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return nil, UserNotFound(id)
}

func (m *MockTx) UpdateUserStats(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateUserStatsCalls = append(m.UpdateUserStatsCalls, *u)
	if m.UpdateUserStatsFunc != nil {
		return m.UpdateUserStatsFunc(ctx, u)
	}
	u.Version++
	return nil
}

func (m *MockTx) InsertMatch(ctx context.Context, match *Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertMatchCalls = append(m.InsertMatchCalls, *match)
	if m.InsertMatchFunc != nil {
		return m.InsertMatchFunc(ctx, match)
	}
	return nil
}
