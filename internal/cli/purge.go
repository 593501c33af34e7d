package cli

import (
	"fmt"

	"github.com/existflow/todoserver/internal/logger"
	"github.com/existflow/todoserver/internal/retention"
	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired anonymous todos once",
	Args:  cobra.NoArgs,
	RunE:  runPurge,
}

func runPurge(cmd *cobra.Command, args []string) error {
	database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := retention.NewSweeper(database, 0).Sweep(cmd.Context())
	if err != nil {
		logger.Error("Purge failed", logger.F("error", err))
		return fmt.Errorf("failed to purge: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired todos\n", n)
	return nil
}
