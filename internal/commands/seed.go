package commands

import (
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tellerd-dev/tellerd/internal/seed"
)

func newSeedCommand() *cobra.Command {
	var dir string
	var randSeed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate synthetic customers, accounts, devices, and pending transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(dir)
			if err != nil {
				return err
			}
			defer e.close()

			if randSeed == 0 {
				randSeed = time.Now().UnixNano()
			}
			gen := seed.NewGenerator(e.st, rand.New(rand.NewSource(randSeed)), nil)
			stats, err := gen.Generate(cmd.Context(), seed.Params{
				Customers:    e.cfg.Seed.Customers,
				Transactions: e.cfg.Seed.Transactions,
			})
			if err != nil {
				return err
			}

			e.log.Info("seed complete",
				zap.Int("customers", stats.Customers),
				zap.Int("accounts", stats.Accounts),
				zap.Int("devices", stats.Devices),
				zap.Int("transactions", stats.Transactions),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")
	cmd.Flags().Int64Var(&randSeed, "rand-seed", 0, "randomness seed (0 = time-based)")

	return cmd
}
