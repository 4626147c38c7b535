package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/nullityv3/home-hero-sub002/internal/config"
	"github.com/nullityv3/home-hero-sub002/internal/db"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the Postgres schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx := context.Background()
		pool, err := db.Connect(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		log.Println("schema is up to date")
		return nil
	},
}
