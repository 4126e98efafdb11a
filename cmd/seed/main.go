// Command seed fills the configured database with demo data.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/yukikurage/warbler/internal/config"
	"github.com/yukikurage/warbler/internal/database"
	"github.com/yukikurage/warbler/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	users := flag.Int("users", defaults.Users, "Number of users to create")
	messages := flag.Int("messages", defaults.MessagesPerUser, "Messages per user")
	follows := flag.Int("follows", defaults.FollowsPerUser, "Follows per user")
	likes := flag.Int("likes", defaults.LikesPerUser, "Likes per user")
	randomSeed := flag.Int64("seed", 0, "Random seed, 0 for a random run")
	clean := flag.Bool("clean", false, "Delete existing data before seeding")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	opts := defaults
	opts.Users = *users
	opts.MessagesPerUser = *messages
	opts.FollowsPerUser = *follows
	opts.LikesPerUser = *likes
	opts.RandomSeed = *randomSeed
	opts.Clean = *clean
	opts.BcryptCost = cfg.BcryptCost

	if _, err := seed.NewSeeder(db, opts).Run(ctx); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seeded users can log in", "password", seed.DefaultPassword)
}
