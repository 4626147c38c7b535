package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nullityv3/home-hero-sub002/internal/alerts"
	"github.com/nullityv3/home-hero-sub002/internal/config"
	"github.com/nullityv3/home-hero-sub002/internal/db"
)

func init() {
	rootCmd.AddCommand(workerCmd)
}

// A standalone worker has no websocket clients; it only stores the in-app
// notifications.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume the realtime notification queue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pool, err := db.Connect(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer pool.Close()

		p := alerts.NewProcessor(db.NewStore(pool).Notifications(), nil)
		return alerts.RunWorker(ctx, cfg.Redis.Addr, p)
	},
}
