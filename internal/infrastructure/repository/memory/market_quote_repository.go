package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/propline/internal/domain/marketquote"
	"github.com/riskibarqy/propline/internal/domain/prop"
)

// MarketQuoteRepository keeps quotes in memory. It resolves PropType through
// an optional PropRepository, like the SQL join does.
type MarketQuoteRepository struct {
	mu     sync.RWMutex
	nextID int64
	quotes map[int64]marketquote.MarketQuote
	props  *PropRepository
}

func NewMarketQuoteRepository(props *PropRepository) *MarketQuoteRepository {
	return &MarketQuoteRepository{
		quotes: make(map[int64]marketquote.MarketQuote),
		props:  props,
	}
}

func (r *MarketQuoteRepository) FindLatestByHash(_ context.Context, propID int64, source, lineHash string) (marketquote.MarketQuote, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best  marketquote.MarketQuote
		found bool
	)
	for _, q := range r.quotes {
		if q.PropID != propID || q.Source != source || q.LineHash != lineHash {
			continue
		}
		if !found || q.LastSeenAt.After(best.LastSeenAt) || (q.LastSeenAt.Equal(best.LastSeenAt) && q.ID > best.ID) {
			best = q
			found = true
		}
	}
	return best, found, nil
}

func (r *MarketQuoteRepository) Create(_ context.Context, item *marketquote.MarketQuote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID
	r.quotes[item.ID] = *item
	return nil
}

func (r *MarketQuoteRepository) TouchLastSeen(_ context.Context, id int64, seenAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.quotes[id]
	if !ok {
		return errNotFound("market quote", id)
	}
	q.LastSeenAt = seenAt
	q.UpdatedAt = seenAt
	r.quotes[id] = q
	return nil
}

func (r *MarketQuoteRepository) ListWithPayout(_ context.Context, afterID int64, limit int) ([]marketquote.MarketQuote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]marketquote.MarketQuote, 0, limit)
	for _, id := range sortedKeys(r.quotes) {
		if id <= afterID {
			continue
		}
		q := r.quotes[id]
		if strings.TrimSpace(q.PayoutSchema) == "" {
			continue
		}
		q.PropType = r.propType(q.PropID)
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *MarketQuoteRepository) ApplyPayoutUpdates(_ context.Context, updates []marketquote.PayoutUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range updates {
		if _, ok := r.quotes[u.QuoteID]; !ok {
			return errNotFound("market quote", u.QuoteID)
		}
	}
	for _, u := range updates {
		q := r.quotes[u.QuoteID]
		q.PayoutSchema = u.PayoutSchema
		q.LineHash = u.LineHash
		q.UpdatedAt = u.UpdatedAt
		r.quotes[u.QuoteID] = q
	}
	return nil
}

// All returns every quote ordered by id.
func (r *MarketQuoteRepository) All() []marketquote.MarketQuote {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]marketquote.MarketQuote, 0, len(r.quotes))
	for _, id := range sortedKeys(r.quotes) {
		out = append(out, r.quotes[id])
	}
	return out
}

func (r *MarketQuoteRepository) propType(propID int64) prop.Type {
	if r.props == nil {
		return ""
	}
	p, _ := r.props.Get(propID)
	return p.Type
}
