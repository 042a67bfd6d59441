package notifier

import (
	"context"
	"sync"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendMatchResultFunc func(ctx context.Context, result MatchResult, dryRun bool) error

	SendMatchResultCalls []struct {
		Result MatchResult
		DryRun bool
	}
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendMatchResult(ctx context.Context, result MatchResult, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchResultCalls = append(m.SendMatchResultCalls, struct {
		Result MatchResult
		DryRun bool
	}{result, dryRun})
	if m.SendMatchResultFunc != nil {
		return m.SendMatchResultFunc(ctx, result, dryRun)
	}
	return nil
}

// Calls returns how many times SendMatchResult was called.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendMatchResultCalls)
}
