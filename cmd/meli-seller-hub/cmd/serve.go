package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vieirasantos/meli-seller-hub/api/openapi"
	"github.com/vieirasantos/meli-seller-hub/internal/api/handlers"
	"github.com/vieirasantos/meli-seller-hub/internal/api/middleware"
	"github.com/vieirasantos/meli-seller-hub/internal/config"
	"github.com/vieirasantos/meli-seller-hub/internal/engine"
	"github.com/vieirasantos/meli-seller-hub/internal/meli"
	"github.com/vieirasantos/meli-seller-hub/internal/notify"
	"github.com/vieirasantos/meli-seller-hub/internal/store"
	"github.com/vieirasantos/meli-seller-hub/internal/users"
	"github.com/vieirasantos/meli-seller-hub/pkg/logger"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and sync scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cliLog := newLogger(cfg.Logging.Level)
	slogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	cancel()
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 60*time.Second)
	err = st.Migrate(migrateCtx)
	cancelMigrate()
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	userSvc := users.New(st, users.WithSessionTTL(cfg.Users.SessionTTL))
	if err := userSvc.EnsureMaster(context.Background(), cfg.Users.MasterPassword); err != nil {
		return fmt.Errorf("seeding master user: %w", err)
	}

	var notifier notify.Notifier
	if cfg.Notifications.Discord.Enabled {
		notifier = notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL)
		cliLog.Info("discord notifications enabled")
	} else {
		notifier = notify.NewNoOpNotifier(slogger)
	}

	// One limiter shared by every account client so the daily quota is
	// counted across the whole process.
	limiter := meli.NewRateLimiter(
		cfg.Meli.RateLimit.PerSecond,
		cfg.Meli.RateLimit.Burst,
		cfg.Meli.RateLimit.DailyLimit,
	)

	clients := func(account *domain.Account) meli.API {
		opts := []meli.Option{
			meli.WithRefreshToken(account.RefreshToken),
			meli.WithRateLimiter(limiter),
		}
		if cfg.Meli.BaseURL != "" {
			opts = append(opts, meli.WithBaseURL(cfg.Meli.BaseURL))
		}
		if cfg.Meli.TokenURL != "" {
			opts = append(opts, meli.WithTokenURL(cfg.Meli.TokenURL))
		}
		return meli.NewClient(account.AccessToken, opts...)
	}

	eng := engine.New(st, clients,
		engine.WithLogger(slogger),
		engine.WithSyncTimeout(cfg.Sync.Timeout),
		engine.WithNotifier(notifier),
	)

	var sched *engine.Scheduler
	if cfg.Sync.AutoSync {
		sched, err = engine.NewScheduler(eng, cfg.Sync.Interval, slogger)
		if err != nil {
			return fmt.Errorf("creating scheduler: %w", err)
		}
		sched.Start()
		cliLog.Info("auto-sync scheduler started", "interval", cfg.Sync.Interval)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(slogger))
	e.Use(middleware.RequestLog(slogger))
	e.Use(middleware.Metrics())

	hh := handlers.NewHealthHandler(st)
	e.GET("/healthz", hh.Healthz)
	e.GET("/readyz", hh.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	openapi.RegisterRoutes(e)

	api := humaecho.New(e, huma.DefaultConfig("Meli Seller Hub", Version))

	handlers.RegisterAccountRoutes(api, handlers.NewAccountsHandler(st, eng, cfg.Meli.ClientID, cfg.Meli.ClientSecret))
	handlers.RegisterProductRoutes(api, handlers.NewProductsHandler(st))
	handlers.RegisterSyncRoutes(api, handlers.NewSyncHandler(eng, st))
	handlers.RegisterStateRoutes(api, handlers.NewStateHandler(st))
	handlers.RegisterUserRoutes(api, handlers.NewUsersHandler(userSvc))
	handlers.RegisterAuthRoutes(api, handlers.NewAuthHandler(handlers.AuthConfig{
		ClientID:     cfg.Meli.ClientID,
		ClientSecret: cfg.Meli.ClientSecret,
		RedirectURI:  cfg.Meli.RedirectURI,
		TokenURL:     cfg.Meli.TokenURL,
		BaseURL:      cfg.Meli.BaseURL,
	}))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	cliLog.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cliLog.Error("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cliLog.Info("shutting down server")

	if sched != nil {
		stopCtx := sched.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(cfg.Sync.Timeout):
			cliLog.Warn("scheduler did not stop in time")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	cliLog.Info("server stopped")
	return nil
}
