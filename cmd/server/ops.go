package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/nullityv3/home-hero-sub002/internal/config"
	mware "github.com/nullityv3/home-hero-sub002/internal/middleware"
)

func init() {
	rootCmd.AddCommand(verifyHeroCmd)
	rootCmd.AddCommand(feeTopUpCmd)
	rootCmd.AddCommand(tokenCmd)

	verifyHeroCmd.Flags().Bool("revoke", false, "clear the verification flag instead of setting it")
	feeTopUpCmd.Flags().String("reference", "", "external payment reference")
	tokenCmd.Flags().String("role", "user", "role claim: user or admin")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
}

// ─── verify-hero ────────────────────────────────────────────────────────────

var verifyHeroCmd = &cobra.Command{
	Use:   "verify-hero HERO_ID",
	Short: "Mark a hero's identity as verified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		revoke, _ := cmd.Flags().GetBool("revoke")
		return withLedger(func(ctx context.Context, a *app) error {
			w, err := a.ledger.SetIdentityVerified(ctx, args[0], !revoke)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hero %s identity_verified=%t\n", w.HeroID, w.IdentityVerified)
			return nil
		})
	},
}

// ─── fee-topup ──────────────────────────────────────────────────────────────

var feeTopUpCmd = &cobra.Command{
	Use:   "fee-topup HERO_ID AMOUNT",
	Short: "Credit a hero's fee balance after an external payment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[1], err)
		}
		ref, _ := cmd.Flags().GetString("reference")
		return withLedger(func(ctx context.Context, a *app) error {
			tx, err := a.ledger.RecordFeeTopUp(ctx, args[0], amount, ref)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transaction %s fee_balance=%s\n", tx.ID, tx.FeeBalanceAfter.StringFixed(2))
			return nil
		})
	},
}

// ─── token ──────────────────────────────────────────────────────────────────

var tokenCmd = &cobra.Command{
	Use:   "token USER_ID",
	Short: "Issue a signed bearer token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.JWT.Secret == "" {
			return fmt.Errorf("JWT_SECRET is required")
		}
		tok, err := mware.IssueToken([]byte(cfg.JWT.Secret), args[0], role, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func withLedger(fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := newApp(ctx, cfg, storePostgres)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
