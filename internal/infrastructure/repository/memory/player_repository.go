package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/match-manager/internal/domain/apperror"
	"github.com/riskibarqy/match-manager/internal/domain/player"
	idgen "github.com/riskibarqy/match-manager/internal/platform/id"
	"github.com/riskibarqy/match-manager/internal/platform/validation"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players []player.Player
	clock   clockwork.Clock
	ids     idgen.Generator
}

func NewPlayerRepository(clock clockwork.Clock, ids idgen.Generator) *PlayerRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}
	return &PlayerRepository{clock: clock, ids: ids}
}

func (r *PlayerRepository) Create(ctx context.Context, input player.NewPlayer) (player.Player, error) {
	if err := validation.Struct(ctx, input); err != nil {
		return player.Player{}, err
	}
	if err := player.CheckJerseyNumber(input.JerseyNumber); err != nil {
		return player.Player{}, err
	}

	playerID, err := r.ids.NewID()
	if err != nil {
		return player.Player{}, apperror.Persistence(err, "generate player id")
	}

	createdAt := now(r.clock)
	item := player.Player{
		ID:           playerID,
		TeamID:       input.TeamID,
		Name:         input.Name,
		JerseyNumber: input.JerseyNumber,
		Positions:    slices.Clone(input.Positions),
		IsActive:     input.IsActive,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(item.ID) >= 0 {
		return player.Player{}, apperror.Persistence(errDuplicateID("player", item.ID), "create player")
	}
	if err := player.CheckJerseyAvailable(item.JerseyNumber, r.jerseyHolder(item.TeamID, item.JerseyNumber), ""); err != nil {
		return player.Player{}, err
	}
	r.players = append(r.players, clonePlayer(item))

	return item, nil
}

func (r *PlayerRepository) FindByID(_ context.Context, id string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return player.Player{}, false, nil
	}
	return clonePlayer(r.players[idx]), true, nil
}

func (r *PlayerRepository) FindByTeamID(_ context.Context, teamID string) ([]player.Player, error) {
	return r.filter(func(p player.Player) bool { return p.TeamID == teamID }), nil
}

func (r *PlayerRepository) FindActiveByTeamID(_ context.Context, teamID string) ([]player.Player, error) {
	return r.filter(func(p player.Player) bool { return p.TeamID == teamID && p.IsActive }), nil
}

func (r *PlayerRepository) FindByJerseyNumber(_ context.Context, teamID string, number int) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	holder := r.jerseyHolder(teamID, number)
	if holder == nil {
		return player.Player{}, false, nil
	}
	return clonePlayer(*holder), true, nil
}

func (r *PlayerRepository) FindByPosition(_ context.Context, teamID string, position player.Position) ([]player.Player, error) {
	return r.filter(func(p player.Player) bool { return p.TeamID == teamID && p.HasPosition(position) }), nil
}

func (r *PlayerRepository) Update(ctx context.Context, id string, patch player.Patch) (player.Player, error) {
	if err := validation.Struct(ctx, patch); err != nil {
		return player.Player{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return player.Player{}, apperror.NotFound("player", id)
	}
	current := r.players[idx]

	if current.ChangesJersey(patch) {
		if err := player.CheckJerseyNumber(*patch.JerseyNumber); err != nil {
			return player.Player{}, err
		}
		if err := player.CheckJerseyAvailable(*patch.JerseyNumber, r.jerseyHolder(current.TeamID, *patch.JerseyNumber), current.ID); err != nil {
			return player.Player{}, err
		}
	}

	updated := current.Apply(patch)
	updated.UpdatedAt = bumpedAt(r.clock, current.UpdatedAt)
	r.players[idx] = clonePlayer(updated)

	return updated, nil
}

func (r *PlayerRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return apperror.NotFound("player", id)
	}
	r.players = slices.Delete(r.players, idx, idx+1)
	return nil
}

func (r *PlayerRepository) DeactivatePlayer(ctx context.Context, id string) (player.Player, error) {
	active := false
	return r.Update(ctx, id, player.Patch{IsActive: &active})
}

func (r *PlayerRepository) ReactivatePlayer(ctx context.Context, id string) (player.Player, error) {
	active := true
	return r.Update(ctx, id, player.Patch{IsActive: &active})
}

func (r *PlayerRepository) filter(keep func(player.Player) bool) []player.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0)
	for _, item := range r.players {
		if keep(item) {
			out = append(out, clonePlayer(item))
		}
	}
	return out
}

func (r *PlayerRepository) indexOf(id string) int {
	return slices.IndexFunc(r.players, func(item player.Player) bool { return item.ID == id })
}

// jerseyHolder expects r.mu to be held.
func (r *PlayerRepository) jerseyHolder(teamID string, number int) *player.Player {
	for idx := range r.players {
		if r.players[idx].TeamID == teamID && r.players[idx].JerseyNumber == number {
			holder := clonePlayer(r.players[idx])
			return &holder
		}
	}
	return nil
}

func clonePlayer(item player.Player) player.Player {
	item.Positions = slices.Clone(item.Positions)
	return item
}
