package ingestrun

import (
	"context"
	"time"
)

// Repository describes run tracking persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item *Run) error
	Update(ctx context.Context, item Run) error
	GetByID(ctx context.Context, id int64) (Run, bool, error)
	// ListRunning returns runs still in running status that started before the cutoff.
	ListRunning(ctx context.Context, startedBefore time.Time) ([]Run, error)
}
