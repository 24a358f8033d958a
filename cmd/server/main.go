package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/nurlan/debtnet/internal/api"
	"github.com/nurlan/debtnet/internal/auth"
	"github.com/nurlan/debtnet/internal/config"
	"github.com/nurlan/debtnet/internal/exchange"
	"github.com/nurlan/debtnet/internal/notify"
	"github.com/nurlan/debtnet/internal/service"
	"github.com/nurlan/debtnet/internal/storage/sqlite"
	"github.com/nurlan/debtnet/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	converter := exchange.NewClient(cfg.Exchange.Host, cfg.Exchange.APIKey, store)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	mailer := notify.NewMailer(cfg.SMTP)

	svcs := api.Services{
		Auth:          service.NewAuthService(store, jwtManager, mailer),
		Users:         service.NewUserService(store),
		Groups:        service.NewGroupService(store),
		Invites:       service.NewInviteService(store),
		Merges:        service.NewMergeService(store),
		Debts:         service.NewDebtService(store),
		Transactions:  service.NewTransactionService(store, converter),
		Balances:      service.NewBalanceService(store, converter, cfg.DefaultCurrency),
		Ratings:       service.NewRatingService(store),
		Optimizations: service.NewOptimizationService(store, converter, cfg.DefaultCurrency),
		Notifications: service.NewNotificationService(store),
	}

	router := api.NewRouter(svcs, store, jwtManager)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reminder := notify.NewReminder(store, mailer, cfg.ReminderInterval)
	go reminder.Run(ctx)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      h2c.NewHandler(router, &http2.Server{}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
