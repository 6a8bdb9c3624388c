package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/propline/internal/domain/ingestrun"
)

type IngestRunRepository struct {
	mu     sync.RWMutex
	nextID int64
	runs   map[int64]ingestrun.Run
}

func NewIngestRunRepository() *IngestRunRepository {
	return &IngestRunRepository{runs: make(map[int64]ingestrun.Run)}
}

func (r *IngestRunRepository) Create(_ context.Context, item *ingestrun.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID
	r.runs[item.ID] = cloneRun(*item)
	return nil
}

func (r *IngestRunRepository) Update(_ context.Context, item ingestrun.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[item.ID]; !ok {
		return errNotFound("ingest run", item.ID)
	}
	r.runs[item.ID] = cloneRun(item)
	return nil
}

func (r *IngestRunRepository) GetByID(_ context.Context, id int64) (ingestrun.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return ingestrun.Run{}, false, nil
	}
	return cloneRun(run), true, nil
}

func (r *IngestRunRepository) ListRunning(_ context.Context, startedBefore time.Time) ([]ingestrun.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ingestrun.Run
	for _, id := range sortedKeys(r.runs) {
		run := r.runs[id]
		if run.IsStale(startedBefore) {
			out = append(out, cloneRun(run))
		}
	}
	return out, nil
}

func cloneRun(run ingestrun.Run) ingestrun.Run {
	run.Errors = append([]ingestrun.ErrorDetail(nil), run.Errors...)
	if run.Stats != nil {
		stats := make(map[string]int, len(run.Stats))
		for k, v := range run.Stats {
			stats[k] = v
		}
		run.Stats = stats
	}
	if run.FinishedAt != nil {
		finished := *run.FinishedAt
		run.FinishedAt = &finished
	}
	return run
}
