package cli

import (
	"fmt"

	"github.com/sadopc/tempo/internal/datekey"
	"github.com/sadopc/tempo/internal/export"
	"github.com/sadopc/tempo/internal/logger"
	"github.com/sadopc/tempo/internal/stats"
	"github.com/spf13/cobra"
)

func (e *env) exportCmd() *cobra.Command {
	var gran, dom, format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a time series to a CSV, JSON or XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, d, err := e.selection(gran, dom)
			if err != nil {
				return err
			}
			cols, err := e.snapshot()
			if err != nil {
				return err
			}
			now := e.now()
			if out == "" {
				out = fmt.Sprintf("tempo-%s-%s-%s.%s", d, g, datekey.Key(now), format)
			}

			pts := stats.BuildSeries(g, cols, now, d)
			r := export.Report{Granularity: g, Domain: d, GeneratedAt: now, Points: pts}
			if err := export.ToFile(format, r, out); err != nil {
				return err
			}

			log := logger.Component("cli")
			log.Debug().Str("format", format).Str("path", out).Int("points", len(pts)).Msg("exported series")
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d %s buckets to %s\n", len(pts), g, out)
			return nil
		},
	}
	addSelectionFlags(cmd, &gran, &dom)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv, json or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default tempo-<domain>-<granularity>-<date>.<format>)")
	return cmd
}
