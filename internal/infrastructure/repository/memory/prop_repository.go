package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/propline/internal/domain/prop"
)

type propKey struct {
	playerID int64
	propType prop.Type
}

type PropRepository struct {
	mu     sync.RWMutex
	nextID int64
	props  map[int64]prop.Prop
	unique map[propKey]int64
}

func NewPropRepository() *PropRepository {
	return &PropRepository{
		props:  make(map[int64]prop.Prop),
		unique: make(map[propKey]int64),
	}
}

func (r *PropRepository) GetByPlayerAndType(_ context.Context, playerID int64, propType prop.Type) (prop.Prop, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.unique[propKey{playerID: playerID, propType: propType}]
	if !ok {
		return prop.Prop{}, false, nil
	}
	return r.props[id], true, nil
}

func (r *PropRepository) Create(_ context.Context, item *prop.Prop) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := propKey{playerID: item.PlayerID, propType: item.Type}
	if _, exists := r.unique[key]; exists {
		return prop.ErrDuplicate
	}
	r.nextID++
	item.ID = r.nextID
	r.props[item.ID] = *item
	r.unique[key] = item.ID
	return nil
}

func (r *PropRepository) MarkActive(_ context.Context, id int64, seenAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.props[id]
	if !ok {
		return errNotFound("prop", id)
	}
	p.Active = true
	p.UpdatedAt = seenAt
	r.props[id] = p
	return nil
}

// Get returns a stored prop by id.
func (r *PropRepository) Get(id int64) (prop.Prop, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.props[id]
	return p, ok
}

func (r *PropRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.props)
}
