package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, input NewPlayer) (Player, error)
	FindByID(ctx context.Context, id string) (Player, bool, error)
	FindByTeamID(ctx context.Context, teamID string) ([]Player, error)
	FindActiveByTeamID(ctx context.Context, teamID string) ([]Player, error)
	FindByJerseyNumber(ctx context.Context, teamID string, number int) (Player, bool, error)
	FindByPosition(ctx context.Context, teamID string, position Position) ([]Player, error)
	Update(ctx context.Context, id string, patch Patch) (Player, error)
	Delete(ctx context.Context, id string) error
	DeactivatePlayer(ctx context.Context, id string) (Player, error)
	ReactivatePlayer(ctx context.Context, id string) (Player, error)
}

// ActiveOnly keeps the players flagged active, preserving order.
func ActiveOnly(players []Player) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}
