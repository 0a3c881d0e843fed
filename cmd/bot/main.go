package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ad/autoreply-bot/internal/config"
	"github.com/ad/autoreply-bot/internal/domain"
	"github.com/ad/autoreply-bot/internal/logger"
	"github.com/ad/autoreply-bot/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "autoreply-bot",
		Short:         "Telegram auto-reply trigger bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newServeCommand(),
		newExportCommand(),
		newImportCommand(),
	)

	return cmd
}

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// store bundles the open database and its queue
type store struct {
	db    *sql.DB
	queue *storage.DBQueue
}

func (s *store) Close() {
	s.queue.Close()
	_ = s.db.Close()
}

// openStore opens the SQLite database, enables WAL and applies schema and
// migrations
func openStore(cfg *config.Config, log *logger.Logger) (*store, error) {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	log.Info("Database opened", "path", cfg.DatabasePath)

	queue := storage.NewDBQueue(db)
	if err := storage.Open(queue); err != nil {
		queue.Close()
		_ = db.Close()
		return nil, err
	}
	log.Info("Database schema ready")

	return &store{db: db, queue: queue}, nil
}

func newPartitioner(cfg *config.Config) (*domain.Partitioner, error) {
	p, err := domain.NewPartitioner(cfg.CategoryMin, cfg.CategoryMax, cfg.CategorySize)
	if err != nil {
		return nil, fmt.Errorf("invalid category settings: %w", err)
	}
	return p, nil
}
