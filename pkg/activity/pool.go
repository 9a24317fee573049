package activity

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ExtractAll extracts every path on at most workers goroutines (NumCPU when
// workers <= 0). Records come back in input order; paths that failed to open
// are left out. Only context cancellation aborts the batch.
func (e *Extractor) ExtractAll(ctx context.Context, paths []string, days, workers int) ([]*Record, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	slots := make([]*Record, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			record, err := e.Extract(gctx, path, days)
			if isCanceled(err) {
				return err
			}

			if err == nil {
				slots[i] = record
			}

			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	records := make([]*Record, 0, len(slots))

	for _, record := range slots {
		if record != nil {
			records = append(records, record)
		}
	}

	return records, err
}
