package marketquote

import (
	"context"
	"time"
)

// Repository describes market quote persistence needs from use cases.
type Repository interface {
	// FindLatestByHash returns the most recently seen quote for the triple.
	FindLatestByHash(ctx context.Context, propID int64, source, lineHash string) (MarketQuote, bool, error)
	Create(ctx context.Context, item *MarketQuote) error
	TouchLastSeen(ctx context.Context, id int64, seenAt time.Time) error
	// ListWithPayout pages quotes with a non-empty payout schema by ascending id.
	ListWithPayout(ctx context.Context, afterID int64, limit int) ([]MarketQuote, error)
	// ApplyPayoutUpdates writes one migration batch atomically.
	ApplyPayoutUpdates(ctx context.Context, updates []PayoutUpdate) error
}
