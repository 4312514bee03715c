package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tellerd-dev/tellerd/internal/dashboard"
)

func newServeCommand() *cobra.Command {
	var dir string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only dashboard API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(dir)
			if err != nil {
				return err
			}
			defer e.close()

			if addr == "" {
				addr = e.cfg.Server.Addr
			}

			app := dashboard.New(e.st, e.log)
			e.log.Info("dashboard listening", zap.String("addr", addr))
			return app.Listen(addr)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
