package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sadopc/tempo/internal/domain"
	"github.com/sadopc/tempo/internal/logger"
	"github.com/spf13/cobra"
)

func (e *env) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load a collections snapshot into the database",
		Long: "Reads a JSON document with tasks, events, habits and okrs arrays and\n" +
			"upserts every entity by ID in one transaction.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			var cols domain.Collections
			if err := json.Unmarshal(data, &cols); err != nil {
				return fmt.Errorf("parse snapshot %s: %w", args[0], err)
			}

			st, err := e.open()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Import(cols); err != nil {
				return fmt.Errorf("import: %w", err)
			}

			log := logger.Component("cli")
			log.Info().Str("file", args[0]).
				Int("tasks", len(cols.Tasks)).
				Int("events", len(cols.Events)).
				Int("habits", len(cols.Habits)).
				Int("okrs", len(cols.OKRs)).
				Msg("imported snapshot")
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks, %d events, %d habits, %d objectives\n",
				len(cols.Tasks), len(cols.Events), len(cols.Habits), len(cols.OKRs))
			return nil
		},
	}
}
