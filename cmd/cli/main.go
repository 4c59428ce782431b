package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"sync"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrJamesThe3rd/ledgerimport/cmd/cli/internal/commands"
	"github.com/MrJamesThe3rd/ledgerimport/internal/config"
	"github.com/MrJamesThe3rd/ledgerimport/internal/database"
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
	_ = godotenv.Load()

	var db *sql.DB

	load := sync.OnceValues(func() (*commands.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}

		db, err = database.New(context.Background(), cfg.ConnectionString(), cfg.DB.MaxConns)
		if err != nil {
			return nil, err
		}

		profiles := profile.NewService(profileStore.New(db))

		return &commands.App{
			Importer: importer.NewService(
				ledger.NewService(ledgerStore.New(db)),
				referenceStore.New(db),
				profiles,
				matching.NewService(matchingStore.New(db)),
				metrics.New(prometheus.NewRegistry()),
				importer.Options{
					MaxUploadBytes:       cfg.Import.MaxUploadBytes,
					DescriptionSeparator: cfg.Import.DescriptionSeparator,
				},
			),
			Profiles: profiles,
			Migrate: func(ctx context.Context) error {
				return database.Migrate(ctx, db)
			},
		}, nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := commands.NewRootCommand(func(context.Context) (*commands.App, error) {
		return load()
	}).ExecuteContext(ctx)

	stop()

	if db != nil {
		db.Close()
	}

	if err != nil {
		os.Exit(1)
	}
}
