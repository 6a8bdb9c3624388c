package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/riskibarqy/propline/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	nextID  int64
	players map[int64]player.Player
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{players: make(map[int64]player.Player)}
}

func (r *PlayerRepository) FindByExternalRef(_ context.Context, provider, externalID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.sortedIDs() {
		p := r.players[id]
		if ref, ok := p.ExternalRefs[provider]; ok && ref == externalID {
			return clonePlayer(p), true, nil
		}
	}
	return player.Player{}, false, nil
}

func (r *PlayerRepository) FindByIdentity(_ context.Context, name, team, sport string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.sortedIDs() {
		p := r.players[id]
		if p.Name == name && p.Team == team && strings.EqualFold(p.Sport, sport) {
			return clonePlayer(p), true, nil
		}
	}
	return player.Player{}, false, nil
}

func (r *PlayerRepository) Create(_ context.Context, item *player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.players {
		if p.Name == item.Name && p.Team == item.Team && strings.EqualFold(p.Sport, item.Sport) {
			return player.ErrDuplicate
		}
	}
	r.nextID++
	item.ID = r.nextID
	r.players[item.ID] = clonePlayer(*item)
	return nil
}

func (r *PlayerRepository) Update(_ context.Context, item player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[item.ID]; !ok {
		return errNotFound("player", item.ID)
	}
	r.players[item.ID] = clonePlayer(item)
	return nil
}

// Count returns the number of stored players.
func (r *PlayerRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

func (r *PlayerRepository) sortedIDs() []int64 {
	return sortedKeys(r.players)
}

func clonePlayer(p player.Player) player.Player {
	if p.ExternalRefs != nil {
		refs := make(map[string]string, len(p.ExternalRefs))
		for k, v := range p.ExternalRefs {
			refs[k] = v
		}
		p.ExternalRefs = refs
	}
	return p
}
