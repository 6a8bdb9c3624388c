package usecase

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/propline/internal/platform/logging"
)

// IngestionCoordinator runs one pipeline per provider, bounded by a worker
// pool. Runs are independent; the database constraints are their only
// shared guard.
type IngestionCoordinator struct {
	services      []*IngestionService
	maxConcurrent int
	logger        *logging.Logger
}

func NewIngestionCoordinator(services []*IngestionService, maxConcurrent int, logger *logging.Logger) *IngestionCoordinator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionCoordinator{
		services:      services,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// RunAll returns one result per service in service order. A service whose
// run record could not be created leaves a zero result at its index and
// contributes to the combined error.
func (c *IngestionCoordinator) RunAll(ctx context.Context, opts RunOptions) ([]IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionCoordinator.RunAll")
	defer span.End()

	results := make([]IngestResult, len(c.services))
	if len(c.services) == 0 {
		return results, nil
	}

	pool, err := ants.NewPool(c.maxConcurrent)
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	var (
		workers sync.WaitGroup
		mu      sync.Mutex
		runErr  error
	)
	for idx, svc := range c.services {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			result, err := svc.Run(ctx, opts)
			if err != nil {
				c.logger.ErrorContext(ctx, "ingest run could not start", "source", svc.Source(), "error", err)
				mu.Lock()
				runErr = errors.CombineErrors(runErr, errors.Wrapf(err, "source %s", svc.Source()))
				mu.Unlock()
				return
			}
			results[idx] = result
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, errors.Wrap(err, "submit ingest run to worker pool")
		}
	}
	workers.Wait()

	return results, runErr
}
