package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                    sync.Mutex
	usersRegistered       int
	usersDeleted          int
	matchesRegistered     int
	registrationFailures  map[string]int
	registrationConflicts int
	registrationDurations []float64
	slackNotifSent        int
	slackNotifFailed      int
	startupTime           float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		registrationFailures:  make(map[string]int),
		registrationDurations: make([]float64, 0),
	}
}

func (m *Mock) IncUsersRegistered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usersRegistered++
}

func (m *Mock) IncUsersDeleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usersDeleted++
}

func (m *Mock) IncMatchesRegistered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesRegistered++
}

func (m *Mock) IncMatchRegistrationFailed(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrationFailures[reason]++
}

func (m *Mock) IncRegistrationConflicts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrationConflicts++
}

func (m *Mock) ObserveRegistrationDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrationDurations = append(m.registrationDurations, seconds)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// UsersRegistered returns the number of times IncUsersRegistered was called.
func (m *Mock) UsersRegistered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usersRegistered
}

// UsersDeleted returns the number of times IncUsersDeleted was called.
func (m *Mock) UsersDeleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usersDeleted
}

// MatchesRegistered returns the number of times IncMatchesRegistered was called.
func (m *Mock) MatchesRegistered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesRegistered
}

// RegistrationFailures returns how often IncMatchRegistrationFailed was called with reason.
func (m *Mock) RegistrationFailures(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registrationFailures[reason]
}

// RegistrationConflicts returns the number of times IncRegistrationConflicts was called.
func (m *Mock) RegistrationConflicts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registrationConflicts
}

// RegistrationDurations returns a copy of every observed duration.
func (m *Mock) RegistrationDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.registrationDurations...)
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
