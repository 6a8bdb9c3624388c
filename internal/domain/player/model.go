package player

import (
	"errors"
	"strings"
	"time"
)

// ErrDuplicate is returned by Create when the identity already exists.
var ErrDuplicate = errors.New("player already exists")

// Player is one real-world player per sport. ExternalRefs maps provider name
// to that provider's player id.
type Player struct {
	ID           int64
	PublicID     string
	Name         string
	Team         string
	Position     string
	Sport        string
	ExternalRefs map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ExternalRef returns the provider's id for this player, if recorded.
func (p Player) ExternalRef(provider string) (string, bool) {
	if p.ExternalRefs == nil {
		return "", false
	}
	v, ok := p.ExternalRefs[strings.TrimSpace(provider)]
	return v, ok
}

// Refresh applies a newer sighting. It reports whether anything changed.
func (p *Player) Refresh(name, team, position, provider, externalID string) bool {
	changed := false
	if name != "" && p.Name != name {
		p.Name = name
		changed = true
	}
	if team != "" && p.Team != team {
		p.Team = team
		changed = true
	}
	if position != "" && p.Position != position {
		p.Position = position
		changed = true
	}
	if provider != "" && externalID != "" {
		if p.ExternalRefs == nil {
			p.ExternalRefs = make(map[string]string)
		}
		if _, ok := p.ExternalRefs[provider]; !ok {
			p.ExternalRefs[provider] = externalID
			changed = true
		}
	}
	return changed
}
