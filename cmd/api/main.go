package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrJamesThe3rd/ledgerimport/internal/config"
	"github.com/MrJamesThe3rd/ledgerimport/internal/database"
	apiHttp "github.com/MrJamesThe3rd/ledgerimport/internal/http"
	matchingHandler "github.com/MrJamesThe3rd/ledgerimport/internal/http/matching"
	profileHandler "github.com/MrJamesThe3rd/ledgerimport/internal/http/profile"
	statementHandler "github.com/MrJamesThe3rd/ledgerimport/internal/http/statement"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/ledgerimport/internal/ledger/store"
	"github.com/MrJamesThe3rd/ledgerimport/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/ledgerimport/internal/matching/store"
	"github.com/MrJamesThe3rd/ledgerimport/internal/metrics"
	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
	profileStore "github.com/MrJamesThe3rd/ledgerimport/internal/profile/store"
	referenceStore "github.com/MrJamesThe3rd/ledgerimport/internal/reference/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString(), cfg.DB.MaxConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	var (
		ledgerService   = ledger.NewService(ledgerStore.New(db))
		matchingService = matching.NewService(matchingStore.New(db))
		profileService  = profile.NewService(profileStore.New(db))
		importService   = importer.NewService(
			ledgerService,
			referenceStore.New(db),
			profileService,
			matchingService,
			metrics.New(prometheus.DefaultRegisterer),
			importer.Options{
				MaxUploadBytes:       cfg.Import.MaxUploadBytes,
				DescriptionSeparator: cfg.Import.DescriptionSeparator,
			},
		)
	)

	var (
		importH   = statementHandler.NewHandler(importService, cfg.Import.MaxUploadBytes)
		profileH  = profileHandler.NewHandler(profileService)
		matchingH = matchingHandler.NewHandler(matchingService)
	)

	router := apiHttp.New(importH, profileH, matchingH, prometheus.DefaultGatherer, cfg.CORS.AllowedOrigins, cfg.Auth.JWTSecret)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", server.Addr)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
