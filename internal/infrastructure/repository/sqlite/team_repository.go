package sqlite

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/match-manager/internal/domain/apperror"
	"github.com/riskibarqy/match-manager/internal/domain/team"
	idgen "github.com/riskibarqy/match-manager/internal/platform/id"
	"github.com/riskibarqy/match-manager/internal/platform/objectstore"
	"github.com/riskibarqy/match-manager/internal/platform/schema"
	"github.com/riskibarqy/match-manager/internal/platform/validation"
)

type TeamRepository struct {
	db    *objectstore.DB
	clock clockwork.Clock
	ids   idgen.Generator
}

func NewTeamRepository(db *objectstore.DB, clock clockwork.Clock, ids idgen.Generator) *TeamRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}
	return &TeamRepository{db: db, clock: clock, ids: ids}
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

	store, err := r.db.Store(schema.StoreTeams)
	if err != nil {
		return team.Team{}, apperror.Persistence(err, "create team")
	}
	if err := store.Add(ctx, teamToDocument(item)); err != nil {
		return team.Team{}, apperror.Persistence(err, "create team")
	}

	return item, nil
}

func (r *TeamRepository) FindByID(ctx context.Context, id string) (team.Team, bool, error) {
	store, err := r.db.Store(schema.StoreTeams)
	if err != nil {
		return team.Team{}, false, apperror.Persistence(err, "find team by id")
	}

	var doc teamDocument
	if err := store.Get(ctx, id, &doc); err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, apperror.Persistence(err, "find team by id")
	}

	return teamFromDocument(doc), true, nil
}

func (r *TeamRepository) FindAll(ctx context.Context) ([]team.Team, error) {
	store, err := r.db.Store(schema.StoreTeams)
	if err != nil {
		return nil, apperror.Persistence(err, "find all teams")
	}

	var docs []teamDocument
	if err := store.GetAll(ctx, &docs); err != nil {
		return nil, apperror.Persistence(err, "find all teams")
	}

	return teamsFromDocuments(docs), nil
}

// FindByName returns the most recently created team with an exact name
// match. Equal creation times resolve to the last inserted team.
func (r *TeamRepository) FindByName(ctx context.Context, name string) (team.Team, bool, error) {
	var docs []teamDocument
	if err := r.queryIndex(ctx, "name", &docs, name); err != nil {
		return team.Team{}, false, apperror.Persistence(err, "find team by name")
	}
	if len(docs) == 0 {
		return team.Team{}, false, nil
	}

	latest := docs[0]
	for _, doc := range docs[1:] {
		if doc.CreatedAt >= latest.CreatedAt {
			latest = doc
		}
	}
	return teamFromDocument(latest), true, nil
}

func (r *TeamRepository) FindRecent(ctx context.Context, limit int) ([]team.Team, error) {
	if limit <= 0 {
		limit = team.DefaultRecentLimit
	}

	store, err := r.db.Store(schema.StoreTeams)
	if err != nil {
		return nil, apperror.Persistence(err, "find recent teams")
	}
	index, err := store.Index("createdAt")
	if err != nil {
		return nil, apperror.Persistence(err, "find recent teams")
	}

	var docs []teamDocument
	if err := index.Cursor(ctx, &docs, objectstore.Descending, limit); err != nil {
		return nil, apperror.Persistence(err, "find recent teams")
	}

	return teamsFromDocuments(docs), nil
}

func (r *TeamRepository) Update(ctx context.Context, id string, patch team.Patch) (team.Team, error) {
	if err := validation.Struct(ctx, patch); err != nil {
		return team.Team{}, err
	}

	var updated team.Team
	err := r.db.Update(ctx, func(tx *objectstore.Tx) error {
		store, err := tx.Store(schema.StoreTeams)
		if err != nil {
			return err
		}

		var doc teamDocument
		if err := store.Get(ctx, id, &doc); err != nil {
			if errors.Is(err, objectstore.ErrNotFound) {
				return apperror.NotFound("team", id)
			}
			return err
		}

		current := teamFromDocument(doc)
		updated = current.Apply(patch)
		updated.UpdatedAt = bumpedAt(r.clock, current.UpdatedAt)

		return store.Put(ctx, teamToDocument(updated))
	})
	if err != nil {
		return team.Team{}, storageError(err, "update team")
	}

	return updated, nil
}

func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	err := r.db.Update(ctx, func(tx *objectstore.Tx) error {
		store, err := tx.Store(schema.StoreTeams)
		if err != nil {
			return err
		}

		var doc teamDocument
		if err := store.Get(ctx, id, &doc); err != nil {
			if errors.Is(err, objectstore.ErrNotFound) {
				return apperror.NotFound("team", id)
			}
			return err
		}

		return store.Delete(ctx, id)
	})
	return storageError(err, "delete team")
}

func (r *TeamRepository) queryIndex(ctx context.Context, name string, dest any, values ...any) error {
	store, err := r.db.Store(schema.StoreTeams)
	if err != nil {
		return err
	}
	index, err := store.Index(name)
	if err != nil {
		return err
	}
	return index.GetAll(ctx, dest, values...)
}
