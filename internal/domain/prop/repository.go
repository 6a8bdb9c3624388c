package prop

import (
	"context"
	"time"
)

// Repository describes prop persistence needs from use cases.
type Repository interface {
	GetByPlayerAndType(ctx context.Context, playerID int64, propType Type) (Prop, bool, error)
	// Create inserts item and fills its ID; ErrDuplicate on (player, type) conflict.
	Create(ctx context.Context, item *Prop) error
	MarkActive(ctx context.Context, id int64, seenAt time.Time) error
}
