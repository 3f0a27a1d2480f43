package team

import (
	"slices"
	"time"

	"github.com/riskibarqy/match-manager/internal/domain/player"
)

// SubstitutionStrategy labels how playing time is shared during a game.
type SubstitutionStrategy string

const (
	StrategyEqualTime        SubstitutionStrategy = "equal-time"
	StrategyMinimumTime      SubstitutionStrategy = "minimum-time"
	StrategyFlexible         SubstitutionStrategy = "flexible"
	StrategyPerformanceBased SubstitutionStrategy = "performance-based"
)

var AllStrategies = map[SubstitutionStrategy]struct{}{
	StrategyEqualTime:        {},
	StrategyMinimumTime:      {},
	StrategyFlexible:         {},
	StrategyPerformanceBased: {},
}

// DefaultRecentLimit is used by FindRecent when no positive limit is given.
const DefaultRecentLimit = 5

// Team is a roster-owning squad managed by a coach.
type Team struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Settings  Settings
}

// Settings holds per-team defaults used when setting up games.
type Settings struct {
	DefaultFormation   Formation
	PreferredStrategy  SubstitutionStrategy `validate:"required,oneof=equal-time minimum-time flexible performance-based"`
	DefaultShiftLength int                  `validate:"gt=0"`
	AdvanceWarningTime int                  `validate:"gte=0"`
}

// Formation is a named tactical layout.
type Formation struct {
	Name        string
	Description string
	Positions   []FormationPosition `validate:"dive"`
}

// FormationPosition places one slot of a formation on the field. X and Y are
// percentages of the field width and length.
type FormationPosition struct {
	ID         string
	Position   player.Position `validate:"oneof=goalkeeper defender midfielder forward"`
	X          float64         `validate:"gte=0,lte=100"`
	Y          float64         `validate:"gte=0,lte=100"`
	IsRequired bool
	Label      string
}

// NewTeam is the caller-supplied part of a team.
type NewTeam struct {
	Name     string `validate:"required"`
	Settings Settings
}

// Patch lists the mutable fields of a team. Nil fields are left unchanged.
type Patch struct {
	Name     *string   `validate:"omitnil,min=1"`
	Settings *Settings `validate:"omitnil"`
}

// Apply merges patch over t. Identity and CreatedAt are never touched.
func (t Team) Apply(patch Patch) Team {
	out := t
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.Settings != nil {
		out.Settings = patch.Settings.Clone()
	}
	return out
}

func (s Settings) Clone() Settings {
	out := s
	out.DefaultFormation.Positions = slices.Clone(s.DefaultFormation.Positions)
	return out
}

// DefaultFormations are the layouts offered when a team is set up without
// one of its own.
var DefaultFormations = []Formation{
	{Name: "4-4-2", Description: "Balanced formation with solid defense and midfield"},
	{Name: "4-3-3", Description: "Attacking formation with three forwards"},
	{Name: "3-5-2", Description: "Midfield-heavy formation for possession play"},
}

// DefaultSettings returns the settings a new team starts from.
func DefaultSettings() Settings {
	return Settings{
		DefaultFormation:   DefaultFormations[0].clone(),
		PreferredStrategy:  StrategyEqualTime,
		DefaultShiftLength: 15,
		AdvanceWarningTime: 3,
	}
}

// FormationByName looks up one of the DefaultFormations.
func FormationByName(name string) (Formation, bool) {
	for _, f := range DefaultFormations {
		if f.Name == name {
			return f.clone(), true
		}
	}
	return Formation{}, false
}

func (f Formation) clone() Formation {
	out := f
	out.Positions = slices.Clone(f.Positions)
	return out
}
