package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/config"
	"github.com/hucha-app/hucha/internal/currency"
	"github.com/hucha-app/hucha/internal/gcal"
	"github.com/hucha-app/hucha/internal/ledger"
	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/service"
	"github.com/hucha-app/hucha/internal/storage"
	"github.com/hucha-app/hucha/internal/tasks"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// currentProfile resolves the acting profile from --profile or config.
func currentProfile(ctx context.Context, store service.Storage) (*model.Profile, error) {
	email := strings.TrimSpace(viper.GetString("profile.email"))
	if email == "" {
		return nil, common.NewUserError(
			"no profile configured; set profile.email in the config file or pass --profile",
			common.ErrMissingConfig)
	}

	profile, err := store.GetProfileByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile %s: %w", email, err)
	}
	return profile, nil
}

// calendarClient builds a calendar client from the cached OAuth token.
// It returns nil without error when the calendar is simply not set up;
// commands then run in offline mode.
func calendarClient(ctx context.Context) service.Calendar {
	calConfig, err := config.LoadCalendarConfig()
	if err != nil {
		slog.Debug("calendar not configured", "error", err)
		return nil
	}

	token, err := gcal.LoadCachedToken(ctx, *calConfig)
	if err != nil {
		slog.Debug("no calendar session", "error", err)
		return nil
	}

	client, err := gcal.NewClient(ctx, *calConfig, token, slog.Default())
	if err != nil {
		slog.Warn("failed to build calendar client", "error", err)
		return nil
	}
	return client
}

// openLedger wires storage, profile, calendar, and queue into a loaded
// store. The returned cleanup stops the queue and closes storage.
func openLedger(ctx context.Context) (*ledger.Store, *tasks.Queue, func(), error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	profile, err := currentProfile(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}

	queue := tasks.NewQueue(0, slog.Default())
	queue.Start(ctx)

	led := ledger.NewStore(store, profile, ledger.Options{
		Calendar: calendarClient(ctx),
		Queue:    queue,
		Logger:   slog.Default(),
	})
	if err := led.Load(ctx); err != nil {
		queue.Stop()
		_ = store.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		queue.Stop()
		if err := store.Close(); err != nil {
			slog.Warn("failed to close storage", "error", err)
		}
	}
	return led, queue, cleanup, nil
}

// drainResults logs any background task failures, mirroring what a user
// would want to know before the process exits.
func drainResults(queue *tasks.Queue) {
	for {
		select {
		case res, ok := <-queue.Results():
			if !ok {
				return
			}
			if res.Err != nil {
				slog.Warn("background task failed", "task", res.Name, "error", res.Err)
			}
		default:
			return
		}
	}
}

// formatterFromConfig builds the currency formatter the display commands use.
func formatterFromConfig() *currency.Formatter {
	code := viper.GetString("currency")
	if code == "" {
		code = model.DefaultCurrency
	}
	return currency.NewFormatter(code)
}
