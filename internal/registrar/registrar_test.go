package registrar

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/scorekeeper/internal/club"
	"github.com/mauv0809/scorekeeper/internal/database"
	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 18, 30, 12, 500, time.UTC)

func fixedClock() time.Time { return fixedNow }

func ptr[T any](v T) *T { return &v }

func request(u1, u2 int64, s1, s2 int, input int64) MatchRequest {
	return MatchRequest{
		User1ID:     ptr(u1),
		User2ID:     ptr(u2),
		User1Score:  ptr(s1),
		User2Score:  ptr(s2),
		InputUserID: ptr(input),
	}
}

type fixture struct {
	store  club.ClubStore
	db     *database.DB
	notif  *notifier.Mock
	metr   *metrics.Mock
	pubsub *pubsub.MockPubSubClient
	r      *Registrar
}

// setupRegistrar wires a registrar to an in-memory SQLite database.
func setupRegistrar(t *testing.T) *fixture {
	t.Helper()
	db, teardown, err := database.InitDB(database.Options{DBName: ":memory:", MigrationsDir: "../../migrations"})
	require.NoError(t, err)
	t.Cleanup(teardown)

	f := &fixture{
		store:  club.New(db),
		db:     db,
		notif:  notifier.NewMock(),
		metr:   metrics.NewMock(),
		pubsub: pubsub.NewMock("TEST"),
	}
	f.r = New(f.store, f.notif, f.metr, f.pubsub, WithClock(fixedClock))
	return f
}

func (f *fixture) user(t *testing.T, name, team string) *club.User {
	t.Helper()
	u, err := f.store.CreateUser(context.Background(), name, team)
	require.NoError(t, err)
	return u
}

func (f *fixture) get(t *testing.T, id int64) *club.User {
	t.Helper()
	u, err := f.store.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u
}

func TestRegisterMatch_Win(t *testing.T) {
	f := setupRegistrar(t)
	ctx := context.Background()
	a := f.user(t, "Ada", "Red")
	b := f.user(t, "Bo", "Blue")

	m, err := f.r.RegisterMatch(ctx, request(a.ID, b.ID, 21, 15, a.ID), false)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.NotZero(t, m.ID)
	assert.Equal(t, a.ID, m.User1ID)
	assert.Equal(t, b.ID, m.User2ID)
	assert.Equal(t, 21, m.User1Score)
	assert.Equal(t, 15, m.User2Score)
	assert.Equal(t, a.ID, m.InputUserID)
	assert.Equal(t, fixedNow.Truncate(time.Second), m.Date)

	gotA := f.get(t, a.ID)
	assert.Equal(t, 1, gotA.Wins)
	assert.Equal(t, 0, gotA.Losses)
	assert.Equal(t, 21, gotA.ScoreFor)
	assert.Equal(t, 15, gotA.ScoreAgainst)

	gotB := f.get(t, b.ID)
	assert.Equal(t, 0, gotB.Wins)
	assert.Equal(t, 1, gotB.Losses)
	assert.Equal(t, 15, gotB.ScoreFor)
	assert.Equal(t, 21, gotB.ScoreAgainst)

	stored, err := f.store.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, *m, *stored)

	assert.Equal(t, 1, f.metr.MatchesRegistered())
	assert.Len(t, f.metr.RegistrationDurations(), 1)

	calls := f.pubsub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, pubsub.EventMatchRegistered, calls[0].Topic)
	event, ok := calls[0].Data.(pubsub.MatchRegisteredEvent)
	require.True(t, ok)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, m.ID, event.Match.ID)
	assert.Equal(t, 1, event.User1.Wins)
	assert.Equal(t, 1, event.User2.Losses)

	require.Len(t, f.notif.SendMatchResultCalls, 1)
	assert.False(t, f.notif.SendMatchResultCalls[0].DryRun)
	assert.Equal(t, "Ada", f.notif.SendMatchResultCalls[0].Result.User1.Name)
}

func TestRegisterMatch_TieOnlyChangesScores(t *testing.T) {
	f := setupRegistrar(t)
	a := f.user(t, "Ada", "Red")
	b := f.user(t, "Bo", "Blue")

	_, err := f.r.RegisterMatch(context.Background(), request(a.ID, b.ID, 10, 10, b.ID), false)
	require.NoError(t, err)

	for _, u := range []*club.User{f.get(t, a.ID), f.get(t, b.ID)} {
		assert.Equal(t, 0, u.Wins, u.Name)
		assert.Equal(t, 0, u.Losses, u.Name)
		assert.Equal(t, 10, u.ScoreFor, u.Name)
		assert.Equal(t, 10, u.ScoreAgainst, u.Name)
	}
}

func TestRegisterMatch_AccumulatesAcrossMatches(t *testing.T) {
	f := setupRegistrar(t)
	ctx := context.Background()
	a := f.user(t, "Ada", "Red")
	b := f.user(t, "Bo", "Blue")

	_, err := f.r.RegisterMatch(ctx, request(a.ID, b.ID, 21, 15, a.ID), false)
	require.NoError(t, err)
	_, err = f.r.RegisterMatch(ctx, request(b.ID, a.ID, 21, 19, b.ID), false)
	require.NoError(t, err)

	gotA := f.get(t, a.ID)
	assert.Equal(t, 1, gotA.Wins)
	assert.Equal(t, 1, gotA.Losses)
	assert.Equal(t, 40, gotA.ScoreFor)
	assert.Equal(t, 36, gotA.ScoreAgainst)

	matches, err := f.store.ListMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestRegisterMatch_MissingUserLeavesNoTrace(t *testing.T) {
	tests := []struct {
		name string
		req  func(a, b int64) MatchRequest
	}{
		{"unknown user2", func(a, b int64) MatchRequest { return request(a, 999, 21, 15, a) }},
		{"unknown user1", func(a, b int64) MatchRequest { return request(999, b, 21, 15, b) }},
		{"unknown input user", func(a, b int64) MatchRequest { return request(a, b, 21, 15, 999) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupRegistrar(t)
			ctx := context.Background()
			a := f.user(t, "Ada", "Red")
			b := f.user(t, "Bo", "Blue")

			m, err := f.r.RegisterMatch(ctx, tt.req(a.ID, b.ID), false)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, club.ErrNotFound)
			assert.Contains(t, err.Error(), "999")

			assert.Equal(t, *a, *f.get(t, a.ID))
			assert.Equal(t, *b, *f.get(t, b.ID))
			matches, err := f.store.ListMatches(ctx)
			require.NoError(t, err)
			assert.Len(t, matches, 0)

			assert.Equal(t, 1, f.metr.RegistrationFailures("not_found"))
			assert.Equal(t, 0, f.metr.MatchesRegistered())
			assert.Len(t, f.pubsub.Calls(), 0)
			assert.Equal(t, 0, f.notif.Calls())
		})
	}
}

func TestRegisterMatch_InvalidInput(t *testing.T) {
	valid := request(1, 2, 21, 15, 1)
	tests := []struct {
		name   string
		mutate func(r *MatchRequest)
	}{
		{"missing user1", func(r *MatchRequest) { r.User1ID = nil }},
		{"missing user2", func(r *MatchRequest) { r.User2ID = nil }},
		{"missing score1", func(r *MatchRequest) { r.User1Score = nil }},
		{"missing score2", func(r *MatchRequest) { r.User2Score = nil }},
		{"missing input user", func(r *MatchRequest) { r.InputUserID = nil }},
		{"zero user id", func(r *MatchRequest) { r.User1ID = ptr(int64(0)) }},
		{"negative input user", func(r *MatchRequest) { r.InputUserID = ptr(int64(-3)) }},
		{"negative score", func(r *MatchRequest) { r.User2Score = ptr(-1) }},
		{"same user twice", func(r *MatchRequest) { r.User2ID = ptr(int64(1)) }},
		{"score above column range", func(r *MatchRequest) { r.User1Score = ptr(stats.MaxScore + 1) }},
		{"huge score", func(r *MatchRequest) { r.User2Score = ptr(math.MaxInt64) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := club.NewMock()
			metr := metrics.NewMock()
			r := New(store, notifier.NewMock(), metr, pubsub.NewMock("TEST"))

			req := valid
			tt.mutate(&req)
			m, err := r.RegisterMatch(context.Background(), req, false)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, club.ErrInvalidInput)
			assert.Equal(t, 0, store.WithTxCalls, "validation happens before any transaction")
			assert.Equal(t, 1, metr.RegistrationFailures("invalid_input"))
		})
	}
}

// failingInsertStore fails InsertMatch after the user updates went through.
type failingInsertStore struct {
	club.ClubStore
	err error
}

type failingInsertTx struct {
	club.Tx
	err error
}

func (s failingInsertStore) WithTx(ctx context.Context, fn func(tx club.Tx) error) error {
	return s.ClubStore.WithTx(ctx, func(tx club.Tx) error {
		return fn(failingInsertTx{Tx: tx, err: s.err})
	})
}

func (t failingInsertTx) InsertMatch(ctx context.Context, m *club.Match) error {
	return t.err
}

func TestRegisterMatch_FailedInsertRollsBackUserUpdates(t *testing.T) {
	f := setupRegistrar(t)
	ctx := context.Background()
	a := f.user(t, "Ada", "Red")
	b := f.user(t, "Bo", "Blue")

	boom := errors.New("disk full")
	r := New(failingInsertStore{ClubStore: f.store, err: boom}, f.notif, f.metr, f.pubsub)

	_, err := r.RegisterMatch(ctx, request(a.ID, b.ID, 21, 15, a.ID), false)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, *a, *f.get(t, a.ID), "user1 update must be rolled back")
	assert.Equal(t, *b, *f.get(t, b.ID), "user2 update must be rolled back")
	assert.Equal(t, 1, f.metr.RegistrationFailures("internal"))
	assert.Len(t, f.pubsub.Calls(), 0)
}

func TestRegisterMatch_DryRunRollsBack(t *testing.T) {
	f := setupRegistrar(t)
	ctx := context.Background()
	a := f.user(t, "Ada", "Red")
	b := f.user(t, "Bo", "Blue")

	m, err := f.r.RegisterMatch(ctx, request(a.ID, b.ID, 21, 15, a.ID), true)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 21, m.User1Score)

	assert.Equal(t, *a, *f.get(t, a.ID))
	assert.Equal(t, *b, *f.get(t, b.ID))
	matches, err := f.store.ListMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, matches, 0)

	assert.Equal(t, 0, f.metr.MatchesRegistered())
	assert.Len(t, f.pubsub.Calls(), 0)

	require.Len(t, f.notif.SendMatchResultCalls, 1, "the notifier previews the result")
	assert.True(t, f.notif.SendMatchResultCalls[0].DryRun)
	assert.Equal(t, 1, f.notif.SendMatchResultCalls[0].Result.User1.Wins)
}

func TestRegisterMatch_DryRunStillReportsMissingUser(t *testing.T) {
	f := setupRegistrar(t)
	a := f.user(t, "Ada", "Red")

	_, err := f.r.RegisterMatch(context.Background(), request(a.ID, 42, 1, 0, a.ID), true)
	assert.ErrorIs(t, err, club.ErrNotFound)
}

func TestRegisterMatch_RejectsTotalsThatWouldOverflow(t *testing.T) {
	f := setupRegistrar(t)
	ctx := context.Background()
	a := f.user(t, "Ada", "Red")
	b := f.user(t, "Bo", "Blue")

	_, err := f.db.Exec("UPDATE users SET score_for = ? WHERE id = ?", int64(math.MaxInt64-5), a.ID)
	require.NoError(t, err)
	before := f.get(t, a.ID)

	_, err = f.r.RegisterMatch(ctx, request(a.ID, b.ID, 10, 0, a.ID), false)
	assert.ErrorIs(t, err, club.ErrInvalidInput)
	assert.ErrorIs(t, err, stats.ErrOverflow)

	assert.Equal(t, *before, *f.get(t, a.ID))
	assert.Equal(t, *b, *f.get(t, b.ID))
	matches, err := f.store.ListMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, matches, 0)
	assert.Equal(t, 1, f.metr.RegistrationFailures("invalid_input"))

	_, err = f.r.RegisterMatch(ctx, request(a.ID, b.ID, 5, 0, a.ID), false)
	require.NoError(t, err, "a score that exactly fills the total is accepted")
	assert.Equal(t, math.MaxInt64, f.get(t, a.ID).ScoreFor)
}

func TestRegisterMatch_MaxScoreIsAccepted(t *testing.T) {
	f := setupRegistrar(t)
	a := f.user(t, "Ada", "Red")
	b := f.user(t, "Bo", "Blue")

	m, err := f.r.RegisterMatch(context.Background(), request(a.ID, b.ID, stats.MaxScore, 0, a.ID), false)
	require.NoError(t, err)
	assert.Equal(t, stats.MaxScore, m.User1Score)
	assert.Equal(t, stats.MaxScore, f.get(t, a.ID).ScoreFor)
}

func TestRegisterMatch_RetriesOnConflict(t *testing.T) {
	store := club.NewMock()
	metr := metrics.NewMock()
	notif := notifier.NewMock()
	ps := pubsub.NewMock("TEST")

	users := map[int64]club.User{
		1: {ID: 1, Name: "Ada", Team: "Red"},
		2: {ID: 2, Name: "Bo", Team: "Blue"},
	}
	store.Tx.GetUserFunc = func(ctx context.Context, id int64) (*club.User, error) {
		u, ok := users[id]
		if !ok {
			return nil, club.UserNotFound(id)
		}
		return &u, nil
	}
	conflicts := 2
	store.Tx.UpdateUserStatsFunc = func(ctx context.Context, u *club.User) error {
		if conflicts > 0 {
			conflicts--
			return fmt.Errorf("%w: user %d changed", club.ErrConflict, u.ID)
		}
		u.Version++
		return nil
	}
	store.Tx.InsertMatchFunc = func(ctx context.Context, m *club.Match) error {
		m.ID = 7
		return nil
	}

	r := New(store, notif, metr, ps, WithMaxRetries(3))
	r.backoff = time.Millisecond

	m, err := r.RegisterMatch(context.Background(), request(1, 2, 3, 1, 1), false)
	require.NoError(t, err)
	assert.Equal(t, int64(7), m.ID)
	assert.Equal(t, 3, store.WithTxCalls)
	assert.Equal(t, 2, metr.RegistrationConflicts())
	assert.Equal(t, 1, metr.MatchesRegistered())
	assert.Equal(t, 0, metr.RegistrationFailures("conflict"))
	assert.Equal(t, []int64{1, 2, 1, 2, 1, 2}, store.Tx.GetUserCalls)
}

func TestRegisterMatch_GivesUpAfterMaxRetries(t *testing.T) {
	store := club.NewMock()
	metr := metrics.NewMock()
	store.Tx.GetUserFunc = func(ctx context.Context, id int64) (*club.User, error) {
		return &club.User{ID: id}, nil
	}
	store.Tx.UpdateUserStatsFunc = func(ctx context.Context, u *club.User) error {
		return club.ErrConflict
	}

	r := New(store, notifier.NewMock(), metr, pubsub.NewMock("TEST"), WithMaxRetries(2))
	r.backoff = time.Millisecond

	_, err := r.RegisterMatch(context.Background(), request(1, 2, 3, 1, 1), false)
	assert.ErrorIs(t, err, club.ErrConflict)
	assert.Equal(t, 3, store.WithTxCalls, "one attempt plus two retries")
	assert.Equal(t, 1, metr.RegistrationFailures("conflict"))
}

func TestRegisterMatch_LocksUsersInIDOrder(t *testing.T) {
	store := club.NewMock()
	store.Tx.GetUserFunc = func(ctx context.Context, id int64) (*club.User, error) {
		return &club.User{ID: id}, nil
	}

	r := New(store, notifier.NewMock(), metrics.NewMock(), pubsub.NewMock("TEST"))
	_, err := r.RegisterMatch(context.Background(), request(9, 4, 1, 2, 6), false)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 6, 9}, store.Tx.GetUserCalls)
}

func TestRegisterMatch_SideEffectFailuresDoNotFailRegistration(t *testing.T) {
	f := setupRegistrar(t)
	a := f.user(t, "Ada", "Red")
	b := f.user(t, "Bo", "Blue")

	f.pubsub.SendMessageFunc = func(ctx context.Context, topic pubsub.EventType, data any) error {
		return errors.New("pubsub down")
	}
	f.notif.SendMatchResultFunc = func(ctx context.Context, result notifier.MatchResult, dryRun bool) error {
		return errors.New("slack down")
	}

	m, err := f.r.RegisterMatch(context.Background(), request(a.ID, b.ID, 2, 1, a.ID), false)
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.Equal(t, 1, f.get(t, a.ID).Wins)
}

func TestRegisterMatch_ConcurrentRegistrationsAreNotLost(t *testing.T) {
	f := setupRegistrar(t)
	ctx := context.Background()
	a := f.user(t, "Ada", "Red")
	b := f.user(t, "Bo", "Blue")
	c := f.user(t, "Cy", "Green")

	const rounds = 10
	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.r.RegisterMatch(ctx, request(a.ID, b.ID, 2, 1, a.ID), false)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.r.RegisterMatch(ctx, request(c.ID, a.ID, 3, 1, c.ID), false)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	gotA := f.get(t, a.ID)
	assert.Equal(t, rounds, gotA.Wins)
	assert.Equal(t, rounds, gotA.Losses)
	assert.Equal(t, 3*rounds, gotA.ScoreFor)
	assert.Equal(t, 4*rounds, gotA.ScoreAgainst)
	assert.Equal(t, int64(2*rounds), gotA.Version)

	assert.Equal(t, rounds, f.get(t, b.ID).Losses)
	assert.Equal(t, rounds, f.get(t, c.ID).Wins)

	matches, err := f.store.ListMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, matches, 2*rounds)
}
