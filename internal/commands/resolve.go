package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tellerd-dev/tellerd/internal/auditlog"
	"github.com/tellerd-dev/tellerd/internal/ledger"
)

func newResolveCommand() *cobra.Command {
	var dir string
	var workers int
	var randSeed int64
	var audit bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve all pending transactions to a terminal status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(dir)
			if err != nil {
				return err
			}
			defer e.close()

			thresholds, err := e.cfg.LedgerThresholds()
			if err != nil {
				return err
			}

			if randSeed == 0 {
				randSeed = time.Now().UnixNano()
			}
			rnd := ledger.NewRand(randSeed)

			locks := ledger.NewAccountLocks()
			selector := ledger.NewSelector(e.st, thresholds, rnd, nil)
			auth := ledger.NewAuthenticator(rnd)
			resolver := ledger.NewResolver(e.st, selector, auth, locks)
			runner := ledger.NewRunner(e.st, resolver, e.log, workers)

			report, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			if audit && report.Processed > 0 {
				entries := make([]auditlog.Entry, 0, len(report.Results))
				now := time.Now()
				for _, res := range report.Results {
					status := string(res.Outcome.Status)
					reason := string(res.Outcome.Reason)
					if res.Err != nil {
						status = "fault"
						reason = res.Err.Error()
					}
					entries = append(entries, auditlog.Entry{
						Timestamp: now,
						TxID:      res.Tx.TxID,
						Kind:      string(res.Tx.Kind()),
						Status:    status,
						Reason:    reason,
						Tier:      string(res.Outcome.Tier),
					})
				}
				if err := auditlog.Append(e.root, entries); err != nil {
					return err
				}
			}

			cmd.Printf("Processed %d transactions: %d succeeded, %d failed, %d faults\n",
				report.Processed, report.Succeeded, report.Failed, report.Faults)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")
	cmd.Flags().IntVar(&workers, "workers", 1, "concurrent resolutions (1 = sequential)")
	cmd.Flags().Int64Var(&randSeed, "rand-seed", 0, "randomness seed (0 = time-based)")
	cmd.Flags().BoolVar(&audit, "audit", true, "append outcomes to logs/audit-log.csv")

	return cmd
}
