package registrar

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/scorekeeper/internal/club"
	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/stats"
	"github.com/sethvargo/go-retry"
)

const (
	defaultMaxRetries = 5
	defaultBackoff    = 10 * time.Millisecond
)

// errDryRun aborts the transaction of a dry run after every write succeeded.
var errDryRun = errors.New("dry run")

// New creates a new Registrar.
func New(store Store, notifier notifier.Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient, opts ...Option) *Registrar {
	r := &Registrar{
		store:      store,
		pubsub:     pubsub,
		notifier:   notifier,
		metrics:    metrics,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterMatch records a match and applies its outcome to both players in
// one transaction. Input errors and missing users abort before any write.
// On a dry run the transaction is rolled back, the notifier only previews the
// result and the match that would have been stored is returned.
func (r *Registrar) RegisterMatch(ctx context.Context, req MatchRequest, dryRun bool) (*club.Match, error) {
	logger := log.FromContext(ctx)
	startTime := time.Now()
	defer func() {
		r.metrics.ObserveRegistrationDuration(time.Since(startTime).Seconds())
	}()

	in, err := validate(req)
	if err != nil {
		r.metrics.IncMatchRegistrationFailed(failureReason(err))
		logger.Warn("Rejected match registration", "error", err)
		return nil, err
	}

	var result notifier.MatchResult
	backoff := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(r.backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := r.commit(ctx, in, dryRun)
		if errors.Is(err, club.ErrConflict) {
			r.metrics.IncRegistrationConflicts()
			logger.Warn("Concurrent update while registering match, retrying", "error", err)
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		r.metrics.IncMatchRegistrationFailed(failureReason(err))
		logger.Error("Failed to register match", "error", err, "user1", in.user1ID, "user2", in.user2ID)
		return nil, err
	}

	if dryRun {
		logger.Info("[Dry Run] Match validated and rolled back", "user1", in.user1ID, "user2", in.user2ID,
			"score", []int{in.score1, in.score2})
		if err := r.notifier.SendMatchResult(ctx, result, true); err != nil {
			logger.Warn("Failed to preview match result notification", "error", err)
		}
		return &result.Match, nil
	}

	r.metrics.IncMatchesRegistered()
	logger.Info("Registered match", "matchID", result.Match.ID, "user1", in.user1ID, "user2", in.user2ID,
		"score", []int{in.score1, in.score2}, "outcome", stats.Decide(in.score1, in.score2))
	r.announce(ctx, result)
	return &result.Match, nil
}

// commit runs one attempt of the read-modify-write inside a transaction.
func (r *Registrar) commit(ctx context.Context, in validated, dryRun bool) (notifier.MatchResult, error) {
	var result notifier.MatchResult
	err := r.store.WithTx(ctx, func(tx club.Tx) error {
		users, err := lockUsers(ctx, tx, in.user1ID, in.user2ID, in.inputUserID)
		if err != nil {
			return err
		}
		u1, u2 := users[in.user1ID], users[in.user2ID]

		r1, r2, err := stats.Apply(u1.Record, u2.Record, in.score1, in.score2)
		if err != nil {
			return fmt.Errorf("%w: %w for users %d and %d", club.ErrInvalidInput, err, u1.ID, u2.ID)
		}
		u1.Record, u2.Record = r1, r2
		if err := tx.UpdateUserStats(ctx, u1); err != nil {
			return err
		}
		if err := tx.UpdateUserStats(ctx, u2); err != nil {
			return err
		}

		match := club.Match{
			User1ID:     in.user1ID,
			User2ID:     in.user2ID,
			User1Score:  in.score1,
			User2Score:  in.score2,
			InputUserID: in.inputUserID,
			Date:        r.now().UTC().Truncate(time.Second),
		}
		if err := tx.InsertMatch(ctx, &match); err != nil {
			return err
		}

		result = notifier.MatchResult{Match: match, User1: *u1, User2: *u2}
		if dryRun {
			return errDryRun
		}
		return nil
	})
	if errors.Is(err, errDryRun) {
		return result, nil
	}
	return result, err
}

// lockUsers reads every referenced user in ascending id order so that two
// registrations touching the same players acquire row locks in the same order.
func lockUsers(ctx context.Context, tx club.Tx, ids ...int64) (map[int64]*club.User, error) {
	ordered := slices.Clone(ids)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	users := make(map[int64]*club.User, len(ordered))
	for _, id := range ordered {
		u, err := tx.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		users[id] = u
	}
	return users, nil
}

// announce publishes the match event and sends the result notification.
// Both are best effort: the match is already committed.
func (r *Registrar) announce(ctx context.Context, result notifier.MatchResult) {
	logger := log.FromContext(ctx)
	event := pubsub.MatchRegisteredEvent{
		EventID:    uuid.NewString(),
		OccurredAt: r.now().UTC(),
		Match:      result.Match,
		User1:      result.User1,
		User2:      result.User2,
	}
	if err := r.pubsub.SendMessage(ctx, pubsub.EventMatchRegistered, event); err != nil {
		logger.Error("Failed to publish match event", "error", err, "matchID", result.Match.ID)
	}
	if err := r.notifier.SendMatchResult(ctx, result, false); err != nil {
		logger.Error("Failed to send match result notification", "error", err, "matchID", result.Match.ID)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, club.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, club.ErrNotFound):
		return "not_found"
	case errors.Is(err, club.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
