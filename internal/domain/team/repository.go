package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, input NewTeam) (Team, error)
	FindByID(ctx context.Context, id string) (Team, bool, error)
	FindAll(ctx context.Context) ([]Team, error)
	FindByName(ctx context.Context, name string) (Team, bool, error)
	FindRecent(ctx context.Context, limit int) ([]Team, error)
	Update(ctx context.Context, id string, patch Patch) (Team, error)
	Delete(ctx context.Context, id string) error
}
