package ledger

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tellerd-dev/tellerd/internal/model"
	"github.com/tellerd-dev/tellerd/internal/store"
)

// Result pairs a transaction with how its resolution ended. Err is set only
// for system faults; business failures live in the Outcome.
type Result struct {
	Tx      model.Transaction
	Outcome Outcome
	Err     error
}

// Report summarizes one batch run.
type Report struct {
	Processed int
	Succeeded int
	Failed    int
	Faults    int
	Results   []Result
}

// Runner fetches all pending transactions and resolves each independently.
// One transaction's failure, business or fault, never stops the batch.
type Runner struct {
	store    *store.Store
	resolver *Resolver
	log      *zap.Logger
	workers  int
}

// NewRunner creates a Runner. workers < 2 means single-threaded processing,
// the simplest conforming mode; higher values fan resolutions out while the
// resolver's account locks keep same-account updates serialized.
func NewRunner(st *store.Store, resolver *Resolver, log *zap.Logger, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{store: st, resolver: resolver, log: log, workers: workers}
}

// Run resolves every currently pending transaction once. The returned error
// is only for failures to fetch the batch itself.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	pending, err := r.store.PendingTransactions(ctx)
	if err != nil {
		return Report{}, err
	}
	if len(pending) == 0 {
		r.log.Info("no pending transactions")
		return Report{}, nil
	}

	results := make([]Result, len(pending))
	if r.workers == 1 {
		for i, tx := range pending {
			results[i] = r.resolveOne(ctx, tx)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < r.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i] = r.resolveOne(ctx, pending[i])
				}
			}()
		}
		for i := range pending {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	report := Report{Processed: len(results), Results: results}
	for _, res := range results {
		switch {
		case res.Err != nil:
			report.Faults++
		case res.Outcome.Status == model.StatusSuccess:
			report.Succeeded++
		default:
			report.Failed++
		}
	}
	r.log.Info("batch complete",
		zap.Int("processed", report.Processed),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("faults", report.Faults),
	)
	return report, nil
}

func (r *Runner) resolveOne(ctx context.Context, tx model.Transaction) Result {
	outcome, err := r.resolver.Resolve(ctx, tx)
	res := Result{Tx: tx, Outcome: outcome, Err: err}

	fields := []zap.Field{
		zap.String("tx_id", tx.TxID),
		zap.String("kind", string(tx.Kind())),
		zap.String("amount", tx.Amount.String()),
	}
	switch {
	case err != nil:
		r.log.Error("transaction fault", append(fields, zap.Error(err))...)
	case outcome.Status == model.StatusSuccess:
		r.log.Info("transaction resolved", append(fields,
			zap.String("status", string(outcome.Status)),
			zap.String("tier", string(outcome.Tier)))...)
	default:
		r.log.Warn("transaction failed", append(fields,
			zap.String("status", string(outcome.Status)),
			zap.String("reason", string(outcome.Reason)),
			zap.String("tier", string(outcome.Tier)))...)
	}
	for _, tag := range outcome.Tags {
		r.log.Warn("risk tag emitted",
			zap.String("tx_id", tag.TxID),
			zap.Int("severity", tag.Severity),
			zap.String("reason", tag.TagReason),
		)
	}
	return res
}
