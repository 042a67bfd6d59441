package registrar

import (
	"time"

	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
)

// Registrar validates and records match results.
type Registrar struct {
	store      Store
	pubsub     pubsub.PubSubClient
	notifier   notifier.Notifier
	metrics    metrics.Metrics
	maxRetries uint64
	backoff    time.Duration
	now        func() time.Time
}

// MatchRequest is the input of RegisterMatch. Pointer fields distinguish a
// missing value from zero.
type MatchRequest struct {
	User1ID     *int64 `json:"user1_id"`
	User2ID     *int64 `json:"user2_id"`
	User1Score  *int   `json:"user1_score"`
	User2Score  *int   `json:"user2_score"`
	InputUserID *int64 `json:"input_userid"`
}

// validated is a MatchRequest that passed every input check.
type validated struct {
	user1ID, user2ID, inputUserID int64
	score1, score2                int
}

// Option configures a Registrar.
type Option func(*Registrar)

// WithMaxRetries sets how many times a registration is retried after an
// optimistic concurrency conflict.
func WithMaxRetries(n uint64) Option {
	return func(r *Registrar) { r.maxRetries = n }
}

// WithClock replaces time.Now for match timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registrar) { r.now = now }
}
