package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nullityv3/home-hero-sub002/internal/admin"
	"github.com/nullityv3/home-hero-sub002/internal/alerts"
	"github.com/nullityv3/home-hero-sub002/internal/config"
	"github.com/nullityv3/home-hero-sub002/internal/marketplace"
	mware "github.com/nullityv3/home-hero-sub002/internal/middleware"
	"github.com/nullityv3/home-hero-sub002/internal/user"
	"github.com/nullityv3/home-hero-sub002/internal/wallet"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("store", storePostgres, "storage backend: memory or postgres")
	serveCmd.Flags().Bool("worker", true, "consume the realtime queue in-process when notify.mode is asynq")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and websocket endpoint",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	storeKind, _ := cmd.Flags().GetString("store")
	withWorker, _ := cmd.Flags().GetBool("worker")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, storeKind)
	if err != nil {
		return err
	}
	defer a.Close()

	// The in-process worker shares the hub, so its pushes reach this
	// server's websocket clients.
	if cfg.Notify.Mode == config.NotifyAsynq && withWorker {
		go func() {
			if err := alerts.RunWorker(ctx, cfg.Redis.Addr, a.processor); err != nil {
				log.Printf("[notify][ERROR] worker stopped: %v", err)
			}
		}()
	}

	e := newServer(a)
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[http][ERROR] server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newServer(a *app) *echo.Echo {
	secret := []byte(a.cfg.JWT.Secret)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if err := a.ready(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "store unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/ws", a.hub.Handler(secret))

	api := e.Group("")
	api.Use(mware.JWT(secret))

	marketplace.NewHandler(a.lifecycle, a.acceptances).Register(api)
	user.NewHandler(a.users).Register(api)
	walletHandler := wallet.NewHandler(a.ledger)
	walletHandler.Register(api)
	alerts.NewHandler(a.store.Notifications()).Register(api)

	adminGroup := e.Group("/admin")
	adminGroup.Use(mware.JWT(secret))
	adminGroup.Use(mware.AdminGuard)
	walletHandler.RegisterAdmin(adminGroup)
	admin.NewHandler(a.store, a.lifecycle).Register(adminGroup)

	return e
}
