package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/match-manager/internal/domain/apperror"
	"github.com/riskibarqy/match-manager/internal/domain/team"
	idgen "github.com/riskibarqy/match-manager/internal/platform/id"
	"github.com/riskibarqy/match-manager/internal/platform/validation"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams []team.Team
	clock clockwork.Clock
	ids   idgen.Generator
}

func NewTeamRepository(clock clockwork.Clock, ids idgen.Generator) *TeamRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}
	return &TeamRepository{clock: clock, ids: ids}
}

func (r *TeamRepository) Create(ctx context.Context, input team.NewTeam) (team.Team, error) {
	if err := validation.Struct(ctx, input); err != nil {
		return team.Team{}, err
	}

	teamID, err := r.ids.NewID()
	if err != nil {
		return team.Team{}, apperror.Persistence(err, "generate team id")
	}

	createdAt := now(r.clock)
	item := team.Team{
		ID:        teamID,
		Name:      input.Name,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		Settings:  input.Settings.Clone(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(item.ID) >= 0 {
		return team.Team{}, apperror.Persistence(errDuplicateID("team", item.ID), "create team")
	}
	r.teams = append(r.teams, cloneTeam(item))

	return item, nil
}

func (r *TeamRepository) FindByID(_ context.Context, id string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return team.Team{}, false, nil
	}
	return cloneTeam(r.teams[idx]), true, nil
}

func (r *TeamRepository) FindAll(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		out = append(out, cloneTeam(item))
	}
	return out, nil
}

// FindByName returns the most recently created exact match; equal creation
// times resolve to the last inserted team.
func (r *TeamRepository) FindByName(_ context.Context, name string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := -1
	for idx, item := range r.teams {
		if item.Name != name {
			continue
		}
		if latest < 0 || !item.CreatedAt.Before(r.teams[latest].CreatedAt) {
			latest = idx
		}
	}
	if latest < 0 {
		return team.Team{}, false, nil
	}
	return cloneTeam(r.teams[latest]), true, nil
}

func (r *TeamRepository) FindRecent(ctx context.Context, limit int) ([]team.Team, error) {
	if limit <= 0 {
		limit = team.DefaultRecentLimit
	}

	out, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	// Reverse first so that, after a stable sort, equal creation times keep
	// the latest insert in front.
	slices.Reverse(out)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *TeamRepository) Update(ctx context.Context, id string, patch team.Patch) (team.Team, error) {
	if err := validation.Struct(ctx, patch); err != nil {
		return team.Team{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return team.Team{}, apperror.NotFound("team", id)
	}

	current := r.teams[idx]
	updated := current.Apply(patch)
	updated.UpdatedAt = bumpedAt(r.clock, current.UpdatedAt)
	r.teams[idx] = cloneTeam(updated)

	return updated, nil
}

func (r *TeamRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return apperror.NotFound("team", id)
	}
	r.teams = slices.Delete(r.teams, idx, idx+1)
	return nil
}

// Count reports how many teams are stored.
func (r *TeamRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.teams)
}

func (r *TeamRepository) indexOf(id string) int {
	return slices.IndexFunc(r.teams, func(item team.Team) bool { return item.ID == id })
}

func cloneTeam(item team.Team) team.Team {
	item.Settings = item.Settings.Clone()
	return item
}
