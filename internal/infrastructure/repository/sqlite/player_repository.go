package sqlite

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/match-manager/internal/domain/apperror"
	"github.com/riskibarqy/match-manager/internal/domain/player"
	idgen "github.com/riskibarqy/match-manager/internal/platform/id"
	"github.com/riskibarqy/match-manager/internal/platform/objectstore"
	"github.com/riskibarqy/match-manager/internal/platform/schema"
	"github.com/riskibarqy/match-manager/internal/platform/validation"
)

const (
	playerTeamIndex     = "teamId"
	playerJerseyIndex   = "jerseyNumber"
	playerPositionIndex = "positions"
)

type PlayerRepository struct {
	db    *objectstore.DB
	clock clockwork.Clock
	ids   idgen.Generator
}

func NewPlayerRepository(db *objectstore.DB, clock clockwork.Clock, ids idgen.Generator) *PlayerRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}
	return &PlayerRepository{db: db, clock: clock, ids: ids}
}

// Create checks the jersey number and writes the player in one transaction;
// the unique (teamId, jerseyNumber) index rejects anything that slips past
// the check.
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
		Positions:    append([]player.Position(nil), input.Positions...),
		IsActive:     input.IsActive,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}

	err = r.db.Update(ctx, func(tx *objectstore.Tx) error {
		store, err := tx.Store(schema.StorePlayers)
		if err != nil {
			return err
		}
		if err := ensureJerseyAvailable(ctx, store, item.TeamID, item.JerseyNumber, ""); err != nil {
			return err
		}
		return r.write(ctx, store, item, store.Add)
	})
	if err != nil {
		return player.Player{}, storageError(err, "create player")
	}

	return item, nil
}

func (r *PlayerRepository) FindByID(ctx context.Context, id string) (player.Player, bool, error) {
	store, err := r.db.Store(schema.StorePlayers)
	if err != nil {
		return player.Player{}, false, apperror.Persistence(err, "find player by id")
	}

	var doc playerDocument
	if err := store.Get(ctx, id, &doc); err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, apperror.Persistence(err, "find player by id")
	}

	return playerFromDocument(doc), true, nil
}

func (r *PlayerRepository) FindByTeamID(ctx context.Context, teamID string) ([]player.Player, error) {
	var docs []playerDocument
	if err := r.queryIndex(ctx, playerTeamIndex, &docs, teamID); err != nil {
		return nil, apperror.Persistence(err, "find players by team")
	}
	return playersFromDocuments(docs), nil
}

func (r *PlayerRepository) FindActiveByTeamID(ctx context.Context, teamID string) ([]player.Player, error) {
	players, err := r.FindByTeamID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return player.ActiveOnly(players), nil
}

func (r *PlayerRepository) FindByJerseyNumber(ctx context.Context, teamID string, number int) (player.Player, bool, error) {
	store, err := r.db.Store(schema.StorePlayers)
	if err != nil {
		return player.Player{}, false, apperror.Persistence(err, "find player by jersey number")
	}

	holder, found, err := jerseyHolder(ctx, store, teamID, number)
	if err != nil {
		return player.Player{}, false, apperror.Persistence(err, "find player by jersey number")
	}
	if !found {
		return player.Player{}, false, nil
	}
	return holder, true, nil
}

// FindByPosition reads the multi-entry positions index and keeps the players
// of teamID.
func (r *PlayerRepository) FindByPosition(ctx context.Context, teamID string, position player.Position) ([]player.Player, error) {
	var docs []playerDocument
	if err := r.queryIndex(ctx, playerPositionIndex, &docs, string(position)); err != nil {
		return nil, apperror.Persistence(err, "find players by position")
	}

	out := make([]player.Player, 0, len(docs))
	for _, doc := range docs {
		if doc.TeamID != teamID {
			continue
		}
		out = append(out, playerFromDocument(doc))
	}
	return out, nil
}

func (r *PlayerRepository) Update(ctx context.Context, id string, patch player.Patch) (player.Player, error) {
	if err := validation.Struct(ctx, patch); err != nil {
		return player.Player{}, err
	}

	var updated player.Player
	err := r.db.Update(ctx, func(tx *objectstore.Tx) error {
		store, err := tx.Store(schema.StorePlayers)
		if err != nil {
			return err
		}

		var doc playerDocument
		if err := store.Get(ctx, id, &doc); err != nil {
			if errors.Is(err, objectstore.ErrNotFound) {
				return apperror.NotFound("player", id)
			}
			return err
		}
		current := playerFromDocument(doc)

		if current.ChangesJersey(patch) {
			if err := player.CheckJerseyNumber(*patch.JerseyNumber); err != nil {
				return err
			}
			if err := ensureJerseyAvailable(ctx, store, current.TeamID, *patch.JerseyNumber, current.ID); err != nil {
				return err
			}
		}

		updated = current.Apply(patch)
		updated.UpdatedAt = bumpedAt(r.clock, current.UpdatedAt)
		return r.write(ctx, store, updated, store.Put)
	})
	if err != nil {
		return player.Player{}, storageError(err, "update player")
	}

	return updated, nil
}

func (r *PlayerRepository) Delete(ctx context.Context, id string) error {
	err := r.db.Update(ctx, func(tx *objectstore.Tx) error {
		store, err := tx.Store(schema.StorePlayers)
		if err != nil {
			return err
		}

		var doc playerDocument
		if err := store.Get(ctx, id, &doc); err != nil {
			if errors.Is(err, objectstore.ErrNotFound) {
				return apperror.NotFound("player", id)
			}
			return err
		}

		return store.Delete(ctx, id)
	})
	return storageError(err, "delete player")
}

func (r *PlayerRepository) DeactivatePlayer(ctx context.Context, id string) (player.Player, error) {
	active := false
	return r.Update(ctx, id, player.Patch{IsActive: &active})
}

func (r *PlayerRepository) ReactivatePlayer(ctx context.Context, id string) (player.Player, error) {
	active := true
	return r.Update(ctx, id, player.Patch{IsActive: &active})
}

// write stores item with the given store operation and turns a unique index
// rejection into a jersey conflict naming the current holder.
func (r *PlayerRepository) write(ctx context.Context, store *objectstore.Store, item player.Player, op func(context.Context, any) error) error {
	err := op(ctx, playerToDocument(item))
	if err == nil || !errors.Is(err, objectstore.ErrConstraint) {
		return err
	}

	holder, found, lookupErr := jerseyHolder(ctx, store, item.TeamID, item.JerseyNumber)
	if lookupErr != nil || !found || holder.ID == item.ID {
		return err
	}
	return player.CheckJerseyAvailable(item.JerseyNumber, &holder, item.ID)
}

func (r *PlayerRepository) queryIndex(ctx context.Context, name string, dest any, values ...any) error {
	store, err := r.db.Store(schema.StorePlayers)
	if err != nil {
		return err
	}
	index, err := store.Index(name)
	if err != nil {
		return err
	}
	return index.GetAll(ctx, dest, values...)
}

func ensureJerseyAvailable(ctx context.Context, store *objectstore.Store, teamID string, number int, excludeID string) error {
	holder, found, err := jerseyHolder(ctx, store, teamID, number)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return player.CheckJerseyAvailable(number, &holder, excludeID)
}

func jerseyHolder(ctx context.Context, store *objectstore.Store, teamID string, number int) (player.Player, bool, error) {
	index, err := store.Index(playerJerseyIndex)
	if err != nil {
		return player.Player{}, false, err
	}

	var doc playerDocument
	if err := index.Get(ctx, &doc, teamID, number); err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, err
	}
	return playerFromDocument(doc), true, nil
}
