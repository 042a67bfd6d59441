package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncUsersRegistered()
	IncUsersDeleted()
	IncMatchesRegistered()
	IncMatchRegistrationFailed(reason string)
	IncRegistrationConflicts()
	ObserveRegistrationDuration(seconds float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
