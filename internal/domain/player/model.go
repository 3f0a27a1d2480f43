package player

import (
	"fmt"
	"slices"
	"time"

	"github.com/riskibarqy/match-manager/internal/domain/apperror"
)

// Position represents the field positions a player can cover.
type Position string

const (
	PositionGoalkeeper Position = "goalkeeper"
	PositionDefender   Position = "defender"
	PositionMidfielder Position = "midfielder"
	PositionForward    Position = "forward"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

const (
	JerseyNumberMin = 1
	JerseyNumberMax = 99
)

// Player is a roster member of exactly one team.
type Player struct {
	ID           string
	TeamID       string
	Name         string
	JerseyNumber int
	Positions    []Position
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPlayer is the caller-supplied part of a player; the repository assigns
// identity and timestamps.
type NewPlayer struct {
	TeamID       string     `validate:"required"`
	Name         string     `validate:"required"`
	JerseyNumber int
	Positions    []Position `validate:"required,min=1,dive,oneof=goalkeeper defender midfielder forward"`
	IsActive     bool
}

// Patch lists the mutable fields of a player. Nil fields are left unchanged.
type Patch struct {
	Name         *string    `validate:"omitnil,min=1"`
	JerseyNumber *int
	Positions    []Position `validate:"omitnil,min=1,dive,oneof=goalkeeper defender midfielder forward"`
	IsActive     *bool
}

func (p Player) HasPosition(position Position) bool {
	return slices.Contains(p.Positions, position)
}

// Apply merges patch over p. Identity and CreatedAt are never touched.
func (p Player) Apply(patch Patch) Player {
	out := p
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.JerseyNumber != nil {
		out.JerseyNumber = *patch.JerseyNumber
	}
	if patch.Positions != nil {
		out.Positions = slices.Clone(patch.Positions)
	}
	if patch.IsActive != nil {
		out.IsActive = *patch.IsActive
	}
	return out
}

// ChangesJersey reports whether patch moves p to a different jersey number.
func (p Player) ChangesJersey(patch Patch) bool {
	return patch.JerseyNumber != nil && *patch.JerseyNumber != p.JerseyNumber
}

func CheckJerseyNumber(number int) error {
	if number < JerseyNumberMin || number > JerseyNumberMax {
		return apperror.Validation("jersey number must be between %d and %d", JerseyNumberMin, JerseyNumberMax)
	}
	return nil
}

// CheckJerseyAvailable fails when holder already wears number and is not the
// player identified by excludeID.
func CheckJerseyAvailable(number int, holder *Player, excludeID string) error {
	if holder == nil || holder.ID == excludeID {
		return nil
	}
	return apperror.Conflict(&JerseyConflictError{
		TeamID:       holder.TeamID,
		JerseyNumber: number,
		HolderID:     holder.ID,
		HolderName:   holder.Name,
	})
}

// JerseyConflictError names the player already wearing a jersey number.
type JerseyConflictError struct {
	TeamID       string
	JerseyNumber int
	HolderID     string
	HolderName   string
}

func (e *JerseyConflictError) Error() string {
	if e.HolderName == "" {
		return fmt.Sprintf("jersey number %d is already taken", e.JerseyNumber)
	}
	return fmt.Sprintf("jersey number %d is already taken by %s", e.JerseyNumber, e.HolderName)
}
