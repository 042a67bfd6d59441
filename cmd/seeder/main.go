package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/club"
	"github.com/mauv0809/scorekeeper/internal/config"
	"github.com/mauv0809/scorekeeper/internal/database"
	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/registrar"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var teams = []string{"Red", "Blue"}

var (
	numUsers   int
	numMatches int
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Fill the configured database with demo users and matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info("Starting database seeder...")
		cfg := config.Load()
		cfg.Log.Apply()

		db, teardown, err := database.InitDB(cfg.Database())
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer teardown()
		log.Info("Successfully connected to the database.", "dialect", db.Dialect)

		store := club.New(db)
		reg := registrar.New(store, notifier.Nop{}, metrics.NewService(prometheus.NewRegistry()), pubsub.NewDisabled())

		startTime := time.Now()
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		if err := seed(cmd.Context(), store, reg, numUsers, numMatches, rng); err != nil {
			return err
		}
		log.Info("Database seeding completed successfully!", "users", numUsers, "matches", numMatches, "duration", time.Since(startTime))
		return nil
	},
}

func init() {
	rootCmd.Flags().IntVar(&numUsers, "users", 6, "number of users to create")
	rootCmd.Flags().IntVar(&numMatches, "matches", 20, "number of matches to register")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Seeding failed: %s", err)
	}
}

// seed wipes the store, creates numUsers users spread over the teams and
// registers numMatches random matches between them.
func seed(ctx context.Context, store club.ClubStore, reg *registrar.Registrar, numUsers, numMatches int, rng *rand.Rand) error {
	if numUsers < 2 && numMatches > 0 {
		return fmt.Errorf("at least two users are needed to register matches, got %d", numUsers)
	}
	if err := store.Clear(ctx); err != nil {
		return err
	}
	log.Info("Cleared existing users and matches.")

	users := make([]*club.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		u, err := store.CreateUser(ctx, fmt.Sprintf("Seeder Player %c", 'A'+rune(i%26)), teams[i%len(teams)])
		if err != nil {
			return fmt.Errorf("failed to create user %d: %w", i, err)
		}
		users = append(users, u)
	}
	log.Info("Created users.", "count", len(users))

	for i := 0; i < numMatches; i++ {
		p := rng.Perm(len(users))
		u1, u2 := users[p[0]], users[p[1]]
		score1, score2 := rng.Intn(22), rng.Intn(22)
		input := u1.ID
		if rng.Intn(2) == 1 {
			input = u2.ID
		}
		req := registrar.MatchRequest{
			User1ID:     &u1.ID,
			User2ID:     &u2.ID,
			User1Score:  &score1,
			User2Score:  &score2,
			InputUserID: &input,
		}
		if _, err := reg.RegisterMatch(ctx, req, false); err != nil {
			return fmt.Errorf("failed to register match %d: %w", i, err)
		}
	}
	log.Info("Registered matches.", "count", numMatches)
	return nil
}
