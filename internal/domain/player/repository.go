package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	FindByExternalRef(ctx context.Context, provider, externalID string) (Player, bool, error)
	FindByIdentity(ctx context.Context, name, team, sport string) (Player, bool, error)
	// Create returns ErrDuplicate when (name, team, sport) is already taken.
	Create(ctx context.Context, item *Player) error
	Update(ctx context.Context, item Player) error
}
