package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tellerd-dev/tellerd/internal/quality"
)

func newCheckCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run schema-level data-quality checks against the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(dir)
			if err != nil {
				return err
			}
			defer e.close()

			findings, err := quality.NewChecker(e.st).Run(cmd.Context())
			if err != nil {
				return err
			}

			if len(findings) == 0 {
				e.log.Info("data quality checks passed")
				return nil
			}

			for _, f := range findings {
				e.log.Error("data quality violation",
					zap.String("rule", f.Rule),
					zap.String("table", f.Table),
					zap.String("column", f.Column),
					zap.String("details", f.Details),
				)
			}
			return fmt.Errorf("%d data quality violation(s)", len(findings))
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")

	return cmd
}
