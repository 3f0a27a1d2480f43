package usecase

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/match-manager/internal/domain/apperror"
	"github.com/riskibarqy/match-manager/internal/domain/player"
	"github.com/riskibarqy/match-manager/internal/domain/team"
	"github.com/riskibarqy/match-manager/internal/infrastructure/persistence"
	teammock "github.com/riskibarqy/match-manager/internal/mocks/domain/team"
	idgen "github.com/riskibarqy/match-manager/internal/platform/id"
	"github.com/riskibarqy/match-manager/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestParseSeedFile_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"no teams":    "teams: []\n",
		"unknown key": "teams:\n  - name: A\n    colour: red\n",
		"no name":     "teams:\n  - players: []\n",
	}
	for name, body := range cases {
		if _, err := ParseSeedFile(strings.NewReader(body)); !errors.Is(err, ErrInvalidSeed) {
			t.Fatalf("%s: expected ErrInvalidSeed, got %v", name, err)
		}
	}
}

func TestRosterSeeder_Seed(t *testing.T) {
	ctx := context.Background()

	raw, err := os.Open("testdata/roster.yaml")
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer raw.Close()
	file, err := ParseSeedFile(raw)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	p := persistence.New(persistence.Config{Driver: persistence.DriverMemory}, persistence.Options{
		Logger:      logging.NewNop(),
		Clock:       clockwork.NewFakeClock(),
		IDGenerator: idgen.NewSequenceGenerator("id"),
	})
	seeder := NewRosterSeeder(p, 2, logging.NewNop())

	result, err := seeder.Seed(ctx, file)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if len(result.Teams) != 2 {
		t.Fatalf("expected 2 seeded teams, got %d", len(result.Teams))
	}
	lightning := result.Teams[0]
	if lightning.Team.Name != "Lightning U12" || lightning.Team.Settings.DefaultFormation.Name != "4-3-3" || lightning.Team.Settings.DefaultShiftLength != 12 {
		t.Fatalf("unexpected lightning team: %+v", lightning.Team)
	}
	if lightning.Team.Settings.AdvanceWarningTime != 3 {
		t.Fatalf("unset settings must fall back to defaults: %+v", lightning.Team.Settings)
	}
	if len(lightning.Players) != 2 || lightning.Players[1].IsActive {
		t.Fatalf("unexpected lightning players: %+v", lightning.Players)
	}

	thunder := result.Teams[1]
	if thunder.Team.Settings.DefaultShiftLength != 15 || len(thunder.Players) != 1 || thunder.Players[0].Positions[0] != player.PositionForward {
		t.Fatalf("unexpected thunder team: %+v", thunder)
	}

	if len(result.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %+v", result.Failures)
	}
	var jersey, formation bool
	for _, failure := range result.Failures {
		switch {
		case failure.Player == "Jane Smith" && errors.Is(failure.Err, apperror.ErrConflict):
			jersey = true
		case failure.Team == "Storm U14" && errors.Is(failure.Err, ErrInvalidSeed):
			formation = true
		}
	}
	if !jersey || !formation {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}

	players, err := p.PlayerRepository()
	if err != nil {
		t.Fatalf("player repository: %v", err)
	}
	roster, err := players.FindByTeamID(ctx, lightning.Team.ID)
	if err != nil {
		t.Fatalf("find by team: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 stored lightning players, got %d", len(roster))
	}
}

func TestRosterSeeder_InitializeFailure(t *testing.T) {
	stub := &stubPersistence{initErr: apperror.Initialization(errors.New("read-only file system"))}
	seeder := NewRosterSeeder(stub, 0, logging.NewNop())

	_, err := seeder.Seed(context.Background(), SeedFile{Teams: []SeedTeam{{Name: "A"}}})
	if !errors.Is(err, apperror.ErrInitialization) {
		t.Fatalf("expected ErrInitialization, got %v", err)
	}
}

func TestSeedSettings_ExplicitZeroIsKept(t *testing.T) {
	file, err := ParseSeedFile(strings.NewReader("teams:\n  - name: Lightning U12\n    settings:\n      advanceWarning: 0\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	settings, err := file.Teams[0].Settings.toSettings()
	if err != nil {
		t.Fatalf("to settings: %v", err)
	}
	if settings.AdvanceWarningTime != 0 {
		t.Fatalf("explicit zero warning must be kept, got %d", settings.AdvanceWarningTime)
	}
	if settings.DefaultShiftLength != team.DefaultSettings().DefaultShiftLength {
		t.Fatalf("missing shift length must use the default, got %d", settings.DefaultShiftLength)
	}

	shift := 0
	if _, err := (SeedSettings{ShiftLength: &shift}).toSettings(); err != nil {
		t.Fatalf("to settings: %v", err)
	}

	teamRepo := teammock.NewRepository(t)
	teamRepo.
		On("Create", mock.Anything, mock.MatchedBy(func(in team.NewTeam) bool {
			return in.Settings.DefaultShiftLength == 0
		})).
		Return(team.Team{}, apperror.Validation("default shift length must be greater than 0")).
		Once()
	seeder := NewRosterSeeder(&stubPersistence{initialized: true}, 1, logging.NewNop())
	_, failures := seeder.seedTeam(context.Background(), teamRepo, nil, SeedTeam{Name: "Zero", Settings: SeedSettings{ShiftLength: &shift}})
	if len(failures) != 1 || !errors.Is(failures[0].Err, apperror.ErrValidation) {
		t.Fatalf("explicit zero shift must reach validation, got %+v", failures)
	}
}
