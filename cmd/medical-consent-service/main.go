package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medical-consent-service/internal/adapters"
	"medical-consent-service/internal/api/handlers"
	"medical-consent-service/internal/audit"
	"medical-consent-service/internal/config"
	"medical-consent-service/internal/database"
	"medical-consent-service/internal/domain/repositories"
	"medical-consent-service/internal/partition"
	"medical-consent-service/internal/services"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medical-consent-service",
		Short: "Consent-gated medical record access service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(auditCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(cfg.LogLevel)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cfg, newLogger(cfg))
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.StorageBackend != config.StoragePostgres {
				return fmt.Errorf("migrate needs STORAGE_BACKEND=postgres, got %q", cfg.StorageBackend)
			}
			logger := newLogger(cfg)

			db, err := database.NewPostgres(cfg.DatabaseURL, logger)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := repositories.AutoMigrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			logger.Info().Msg("schema up to date")
			return nil
		},
	}
}

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit journal",
	}

	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the most recent audit events, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, _ := cmd.Flags().GetInt("n")
			path, _ := cmd.Flags().GetString("path")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if path == "" {
				path = cfg.AuditJournalPath
			}
			if path == "" {
				return errors.New("--path or AUDIT_JOURNAL_PATH is required")
			}

			journal, err := audit.OpenJournal(path, newLogger(cfg))
			if err != nil {
				return err
			}
			defer journal.Close()

			events, err := journal.Tail(n)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, ev := range events {
				if err := enc.Encode(ev); err != nil {
					return err
				}
			}
			return nil
		},
	}
	tailCmd.Flags().IntP("n", "n", 20, "Number of events to print")
	tailCmd.Flags().String("path", "", "Journal directory (defaults to AUDIT_JOURNAL_PATH)")
	cmd.AddCommand(tailCmd)

	return cmd
}

func openStore(cfg config.Config, logger zerolog.Logger) (repositories.Store, *gorm.DB, error) {
	if cfg.StorageBackend != config.StoragePostgres {
		logger.Warn().Msg("using in-memory storage; state is lost on restart")
		return repositories.NewMemoryStore(), nil, nil
	}
	db, err := database.NewPostgres(cfg.DatabaseURL, logger)
	if err != nil {
		return repositories.Store{}, nil, err
	}
	return repositories.NewGormStore(db), db, nil
}

func openQueue(ctx context.Context, cfg config.Config, logger zerolog.Logger) (adapters.QueueAdapter, error) {
	switch cfg.QueueBackend {
	case config.QueueKafka:
		return adapters.NewKafkaQueueAdapter(cfg.KafkaBrokers, cfg.KafkaGroupID, logger), nil
	case config.QueueSQS:
		client, err := adapters.NewSQSClient(ctx)
		if err != nil {
			return nil, err
		}
		return adapters.NewSQSQueueAdapter(client, cfg.SQSQueueURL, logger), nil
	default:
		return adapters.NewInMemoryQueueAdapter(logger), nil
	}
}

func runServer(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer database.Close(db)
	}

	queue, err := openQueue(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer queue.Close()

	var sink audit.Sink = audit.NopSink{}
	if cfg.AuditJournalPath != "" {
		journal, err := audit.OpenJournal(cfg.AuditJournalPath, logger)
		if err != nil {
			return err
		}
		defer journal.Close()
		// The consumer outlives the signal context: requests still in flight
		// during shutdown publish events that must reach the journal.
		if err := queue.StartConsuming(context.Background(), audit.Queue, journal.Handle); err != nil {
			return err
		}
		defer func() {
			if err := queue.StopConsuming(context.Background(), audit.Queue); err != nil {
				logger.Error().Err(err).Msg("audit consumer did not drain")
			}
		}()
		sink = audit.NewQueueSink(queue, logger)
	} else if cfg.QueueBackend != config.QueueMemory {
		// events go to the broker for external consumers
		sink = audit.NewQueueSink(queue, logger)
	}

	engine := services.NewEngine(store, partition.NewLocker(cfg.LockStripes), sink, services.SystemClock, logger)
	app := handlers.NewApp(engine, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
