package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/match-manager/internal/domain/team"
	idgen "github.com/riskibarqy/match-manager/internal/platform/id"
	"github.com/riskibarqy/match-manager/internal/platform/objectstore"
	"github.com/riskibarqy/match-manager/internal/platform/schema"
)

var baseTime = time.Date(2025, time.March, 1, 9, 30, 0, 123456789, time.UTC)

func openTestDB(t *testing.T) *objectstore.DB {
	t.Helper()
	db, err := objectstore.Open(context.Background(), objectstore.Options{
		Path:   filepath.Join(t.TempDir(), "MatchManagerDB.sqlite"),
		Schema: schema.MatchManager,
	})
	if err != nil {
		t.Fatalf("open object store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fixture struct {
	db      *objectstore.DB
	clock   *clockwork.FakeClock
	teams   *TeamRepository
	players *PlayerRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := openTestDB(t)
	clock := clockwork.NewFakeClockAt(baseTime)
	return fixture{
		db:      db,
		clock:   clock,
		teams:   NewTeamRepository(db, clock, idgen.NewSequenceGenerator("team")),
		players: NewPlayerRepository(db, clock, idgen.NewSequenceGenerator("player")),
	}
}

func defaultSettings() team.Settings {
	return team.Settings{
		DefaultFormation: team.Formation{
			Name:        "2-3-1",
			Description: "Two at the back",
			Positions: []team.FormationPosition{
				{ID: "gk", Position: "goalkeeper", X: 50, Y: 5, IsRequired: true, Label: "GK"},
				{ID: "st", Position: "forward", X: 50, Y: 85, Label: "ST"},
			},
		},
		PreferredStrategy:  team.StrategyEqualTime,
		DefaultShiftLength: 10,
		AdvanceWarningTime: 2,
	}
}

func mustCreateTeam(t *testing.T, repo *TeamRepository, name string) team.Team {
	t.Helper()
	created, err := repo.Create(context.Background(), team.NewTeam{Name: name, Settings: defaultSettings()})
	if err != nil {
		t.Fatalf("create team %s: %v", name, err)
	}
	return created
}
