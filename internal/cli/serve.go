package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sadopc/tempo/internal/api"
	"github.com/spf13/cobra"
)

func (e *env) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve statistics as read-only JSON over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = e.cfg.APIAddr
			}
			if e.cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			st, err := e.open()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.New(st, api.Options{
				Location:    e.loc,
				DailyGoal:   e.cfg.DailyGoal,
				Granularity: e.cfg.GranularityValue(),
				Domain:      e.cfg.DomainValue(),
				Now:         nowFunc,
			})
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
