package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ad/autoreply-bot/internal/config"
	"github.com/ad/autoreply-bot/internal/logger"
	"github.com/ad/autoreply-bot/internal/storage"
	"github.com/ad/autoreply-bot/internal/transfer"

	"github.com/spf13/cobra"
)

// openTransfer builds a transfer service over the configured database
func openTransfer() (*transfer.Service, *store, error) {
	cfg, err := config.LoadOffline()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	st, err := openStore(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	partitioner, err := newPartitioner(cfg)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	repo := storage.NewTriggerRepository(st.queue, log.With("component", "trigger_repository"))
	return transfer.NewService(repo, partitioner, log.With("component", "transfer")), st, nil
}

func newExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all triggers to a YAML backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, st, err := openTransfer()
			if err != nil {
				return err
			}
			defer st.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			n, err := svc.Export(cmd.Context(), w)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d triggers\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "Backup file, - for stdout")

	return cmd
}

func newImportCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load triggers from a YAML backup, keeping existing keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, st, err := openTransfer()
			if err != nil {
				return err
			}
			defer st.Close()

			var r io.Reader = cmd.InOrStdin()
			if input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", input, err)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			result, err := svc.Import(cmd.Context(), r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d, skipped %d existing, %d invalid\n",
				result.Imported, result.Skipped, result.Invalid)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "Backup file, - for stdin")

	return cmd
}
