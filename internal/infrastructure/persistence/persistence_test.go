package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/match-manager/internal/domain/apperror"
	"github.com/riskibarqy/match-manager/internal/domain/team"
	idgen "github.com/riskibarqy/match-manager/internal/platform/id"
	"github.com/riskibarqy/match-manager/internal/platform/logging"
)

func newTestPersistence(t *testing.T, driver Driver) (*Persistence, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "MatchManagerDB.sqlite")
	p := New(Config{Driver: driver, Path: path}, Options{
		Logger:      logging.NewNop(),
		Clock:       clockwork.NewFakeClock(),
		IDGenerator: idgen.NewSequenceGenerator("id"),
	})
	t.Cleanup(func() { _ = p.Close() })
	return p, path
}

func TestPersistence_RepositoriesRequireInitialize(t *testing.T) {
	p, _ := newTestPersistence(t, DriverSQLite)

	if p.IsInitialized() {
		t.Fatalf("new persistence must not be initialized")
	}
	if _, err := p.TeamRepository(); !errors.Is(err, apperror.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := p.PlayerRepository(); !errors.Is(err, apperror.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if p.CheckHealth(context.Background()) {
		t.Fatalf("uninitialized persistence must be unhealthy")
	}
}

func TestPersistence_ConcurrentInitialize(t *testing.T) {
	ctx := context.Background()
	p, path := newTestPersistence(t, DriverSQLite)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- p.Initialize(ctx)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("initialize: %v", err)
		}
	}

	if !p.IsInitialized() {
		t.Fatalf("expected initialized persistence")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
	if !p.CheckHealth(ctx) {
		t.Fatalf("expected healthy persistence")
	}

	teams, err := p.TeamRepository()
	if err != nil {
		t.Fatalf("team repository: %v", err)
	}
	again, err := p.TeamRepository()
	if err != nil {
		t.Fatalf("team repository: %v", err)
	}
	if teams != again {
		t.Fatalf("repositories must be shared between calls")
	}
}

func TestPersistence_CloseKeepsDataResetDropsIt(t *testing.T) {
	ctx := context.Background()
	p, path := newTestPersistence(t, DriverSQLite)
	if err := p.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	teams, _ := p.TeamRepository()
	created, err := teams.Create(ctx, team.NewTeam{Name: "Lightning U12", Settings: team.Settings{
		PreferredStrategy:  team.StrategyEqualTime,
		DefaultShiftLength: 10,
	}})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if p.IsInitialized() || p.CheckHealth(ctx) {
		t.Fatalf("closed persistence must be uninitialized and unhealthy")
	}
	if err := p.Initialize(ctx); err != nil {
		t.Fatalf("reinitialize: %v", err)
	}
	teams, _ = p.TeamRepository()
	if _, found, err := teams.FindByID(ctx, created.ID); err != nil || !found {
		t.Fatalf("data lost across close: found=%v err=%v", found, err)
	}

	if err := p.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("database file should be deleted, stat err=%v", err)
	}
	if p.CheckHealth(ctx) {
		t.Fatalf("reset persistence must be unhealthy")
	}

	if err := p.Initialize(ctx); err != nil {
		t.Fatalf("initialize after reset: %v", err)
	}
	teams, _ = p.TeamRepository()
	all, err := teams.FindAll(ctx)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty database after reset, got %d teams", len(all))
	}
}

func TestPersistence_InitializeFailure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	p := New(Config{Driver: DriverSQLite, Path: filepath.Join(blocker, "MatchManagerDB.sqlite")}, Options{Logger: logging.NewNop()})
	err := p.Initialize(ctx)
	if !errors.Is(err, apperror.ErrInitialization) {
		t.Fatalf("expected ErrInitialization, got %v", err)
	}
	if p.IsInitialized() {
		t.Fatalf("failed initialize must leave persistence uninitialized")
	}

	unknown := New(Config{Driver: Driver("postgres")}, Options{Logger: logging.NewNop()})
	if err := unknown.Initialize(ctx); !errors.Is(err, apperror.ErrInitialization) {
		t.Fatalf("expected ErrInitialization for unknown driver, got %v", err)
	}
}

func TestPersistence_MemoryDriver(t *testing.T) {
	ctx := context.Background()
	p, path := newTestPersistence(t, DriverMemory)
	if err := p.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !p.CheckHealth(ctx) {
		t.Fatalf("expected healthy memory persistence")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("memory driver must not create files, stat err=%v", err)
	}

	players, err := p.PlayerRepository()
	if err != nil {
		t.Fatalf("player repository: %v", err)
	}
	if _, err := players.FindByTeamID(ctx, "team-1"); err != nil {
		t.Fatalf("find by team: %v", err)
	}

	if err := p.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if p.IsInitialized() {
		t.Fatalf("reset must clear the initialized flag")
	}
}
