package sqlite

import (
	"errors"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/match-manager/internal/domain/apperror"
	"github.com/riskibarqy/match-manager/internal/domain/player"
	"github.com/riskibarqy/match-manager/internal/domain/team"
)

// Documents keep timestamps as Unix milliseconds so the createdAt index
// orders chronologically.

type teamDocument struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	CreatedAt int64            `json:"createdAt"`
	UpdatedAt int64            `json:"updatedAt"`
	Settings  settingsDocument `json:"settings"`
}

type settingsDocument struct {
	DefaultFormation   formationDocument `json:"defaultFormation"`
	PreferredStrategy  string            `json:"preferredStrategy"`
	DefaultShiftLength int               `json:"defaultShiftLength"`
	AdvanceWarningTime int               `json:"advanceWarningTime"`
}

type formationDocument struct {
	Name        string                      `json:"name"`
	Description string                      `json:"description"`
	Positions   []formationPositionDocument `json:"positions"`
}

type formationPositionDocument struct {
	ID         string  `json:"id"`
	Position   string  `json:"position"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	IsRequired bool    `json:"isRequired"`
	Label      string  `json:"label"`
}

type playerDocument struct {
	ID           string   `json:"id"`
	TeamID       string   `json:"teamId"`
	Name         string   `json:"name"`
	JerseyNumber int      `json:"jerseyNumber"`
	Positions    []string `json:"positions"`
	IsActive     bool     `json:"isActive"`
	CreatedAt    int64    `json:"createdAt"`
	UpdatedAt    int64    `json:"updatedAt"`
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// now returns the clock reading at the precision documents can store.
func now(clock clockwork.Clock) time.Time {
	return clock.Now().UTC().Truncate(time.Millisecond)
}

// bumpedAt never moves UpdatedAt backwards, even if the clock does.
func bumpedAt(clock clockwork.Clock, previous time.Time) time.Time {
	current := now(clock)
	if current.Before(previous) {
		return previous
	}
	return current
}

func teamToDocument(t team.Team) teamDocument {
	positions := make([]formationPositionDocument, 0, len(t.Settings.DefaultFormation.Positions))
	for _, p := range t.Settings.DefaultFormation.Positions {
		positions = append(positions, formationPositionDocument{
			ID:         p.ID,
			Position:   string(p.Position),
			X:          p.X,
			Y:          p.Y,
			IsRequired: p.IsRequired,
			Label:      p.Label,
		})
	}

	return teamDocument{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: toMillis(t.CreatedAt),
		UpdatedAt: toMillis(t.UpdatedAt),
		Settings: settingsDocument{
			DefaultFormation: formationDocument{
				Name:        t.Settings.DefaultFormation.Name,
				Description: t.Settings.DefaultFormation.Description,
				Positions:   positions,
			},
			PreferredStrategy:  string(t.Settings.PreferredStrategy),
			DefaultShiftLength: t.Settings.DefaultShiftLength,
			AdvanceWarningTime: t.Settings.AdvanceWarningTime,
		},
	}
}

func teamFromDocument(doc teamDocument) team.Team {
	var positions []team.FormationPosition
	if len(doc.Settings.DefaultFormation.Positions) > 0 {
		positions = make([]team.FormationPosition, 0, len(doc.Settings.DefaultFormation.Positions))
		for _, p := range doc.Settings.DefaultFormation.Positions {
			positions = append(positions, team.FormationPosition{
				ID:         p.ID,
				Position:   player.Position(p.Position),
				X:          p.X,
				Y:          p.Y,
				IsRequired: p.IsRequired,
				Label:      p.Label,
			})
		}
	}

	return team.Team{
		ID:        doc.ID,
		Name:      doc.Name,
		CreatedAt: fromMillis(doc.CreatedAt),
		UpdatedAt: fromMillis(doc.UpdatedAt),
		Settings: team.Settings{
			DefaultFormation: team.Formation{
				Name:        doc.Settings.DefaultFormation.Name,
				Description: doc.Settings.DefaultFormation.Description,
				Positions:   positions,
			},
			PreferredStrategy:  team.SubstitutionStrategy(doc.Settings.PreferredStrategy),
			DefaultShiftLength: doc.Settings.DefaultShiftLength,
			AdvanceWarningTime: doc.Settings.AdvanceWarningTime,
		},
	}
}

func teamsFromDocuments(docs []teamDocument) []team.Team {
	out := make([]team.Team, 0, len(docs))
	for _, doc := range docs {
		out = append(out, teamFromDocument(doc))
	}
	return out
}

func playerToDocument(p player.Player) playerDocument {
	positions := make([]string, 0, len(p.Positions))
	for _, pos := range p.Positions {
		positions = append(positions, string(pos))
	}

	return playerDocument{
		ID:           p.ID,
		TeamID:       p.TeamID,
		Name:         p.Name,
		JerseyNumber: p.JerseyNumber,
		Positions:    positions,
		IsActive:     p.IsActive,
		CreatedAt:    toMillis(p.CreatedAt),
		UpdatedAt:    toMillis(p.UpdatedAt),
	}
}

func playerFromDocument(doc playerDocument) player.Player {
	positions := make([]player.Position, 0, len(doc.Positions))
	for _, pos := range doc.Positions {
		positions = append(positions, player.Position(pos))
	}

	return player.Player{
		ID:           doc.ID,
		TeamID:       doc.TeamID,
		Name:         doc.Name,
		JerseyNumber: doc.JerseyNumber,
		Positions:    positions,
		IsActive:     doc.IsActive,
		CreatedAt:    fromMillis(doc.CreatedAt),
		UpdatedAt:    fromMillis(doc.UpdatedAt),
	}
}

func playersFromDocuments(docs []playerDocument) []player.Player {
	out := make([]player.Player, 0, len(docs))
	for _, doc := range docs {
		out = append(out, playerFromDocument(doc))
	}
	return out
}

// storageError passes domain errors through untouched and wraps everything
// else as a persistence failure of op.
func storageError(err error, op string) error {
	if err == nil {
		return nil
	}
	if slices.ContainsFunc([]error{
		apperror.ErrValidation,
		apperror.ErrConflict,
		apperror.ErrNotFound,
	}, func(kind error) bool { return errors.Is(err, kind) }) {
		return err
	}
	return apperror.Persistence(err, op)
}
