package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		UsersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_users_registered_total",
			Help: "The total number of users registered.",
		}),
		UsersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_users_deleted_total",
			Help: "The total number of users deleted.",
		}),
		MatchesRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_matches_registered_total",
			Help: "The total number of matches committed together with both players' stats.",
		}),
		RegistrationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scorekeeper_match_registration_failures_total",
			Help: "The total number of rejected or failed match registrations, by reason.",
		}, []string{"reason"}),
		RegistrationConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_match_registration_conflicts_total",
			Help: "The total number of optimistic concurrency conflicts hit while registering matches.",
		}),
		RegistrationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scorekeeper_match_registration_duration_seconds",
			Help:    "The duration of match registration including retries.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scorekeeper_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.UsersRegistered,
		s.UsersDeleted,
		s.MatchesRegistered,
		s.RegistrationFailures,
		s.RegistrationConflicts,
		s.RegistrationDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncUsersRegistered() {
	s.UsersRegistered.Inc()
}

func (s *Service) IncUsersDeleted() {
	s.UsersDeleted.Inc()
}

func (s *Service) IncMatchesRegistered() {
	s.MatchesRegistered.Inc()
}

func (s *Service) IncMatchRegistrationFailed(reason string) {
	s.RegistrationFailures.WithLabelValues(reason).Inc()
}

func (s *Service) IncRegistrationConflicts() {
	s.RegistrationConflicts.Inc()
}

func (s *Service) ObserveRegistrationDuration(seconds float64) {
	s.RegistrationDuration.Observe(seconds)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
