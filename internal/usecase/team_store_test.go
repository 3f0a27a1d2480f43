package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/match-manager/internal/domain/apperror"
	"github.com/riskibarqy/match-manager/internal/domain/player"
	"github.com/riskibarqy/match-manager/internal/domain/team"
	"github.com/riskibarqy/match-manager/internal/infrastructure/persistence"
	playermock "github.com/riskibarqy/match-manager/internal/mocks/domain/player"
	teammock "github.com/riskibarqy/match-manager/internal/mocks/domain/team"
	idgen "github.com/riskibarqy/match-manager/internal/platform/id"
	"github.com/riskibarqy/match-manager/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

type stubPersistence struct {
	initErr     error
	initCalls   int
	initialized bool
	teams       team.Repository
	players     player.Repository
}

func (p *stubPersistence) Initialize(context.Context) error {
	p.initCalls++
	if p.initErr != nil {
		return p.initErr
	}
	p.initialized = true
	return nil
}

func (p *stubPersistence) TeamRepository() (team.Repository, error) {
	if !p.initialized {
		return nil, apperror.NotInitialized()
	}
	return p.teams, nil
}

func (p *stubPersistence) PlayerRepository() (player.Repository, error) {
	if !p.initialized {
		return nil, apperror.NotInitialized()
	}
	return p.players, nil
}

func newMockedStore(t *testing.T) (*TeamStore, *teammock.Repository, *playermock.Repository) {
	t.Helper()
	teamRepo := teammock.NewRepository(t)
	playerRepo := playermock.NewRepository(t)
	store := NewTeamStore(&stubPersistence{initialized: true, teams: teamRepo, players: playerRepo}, logging.NewNop(), 0)
	return store, teamRepo, playerRepo
}

func TestTeamStore_SelectTeamClearsThenLoads(t *testing.T) {
	ctx := context.Background()
	store, _, playerRepo := newMockedStore(t)

	teamA := team.Team{ID: "team-a", Name: "Lightning U12"}
	playersA := []player.Player{{ID: "pa1", TeamID: "team-a", Name: "John Doe", JerseyNumber: 10}}
	playersB := []player.Player{{ID: "pb1", TeamID: "team-b", Name: "Jane Smith", JerseyNumber: 7}}

	playerRepo.
		On("FindByTeamID", mock.Anything, "team-b").
		Return(playersB, nil).
		Once()
	store.LoadPlayers(ctx, "team-b")
	if got := store.Snapshot().Players; len(got) != 1 || got[0].ID != "pb1" {
		t.Fatalf("expected team-b roster loaded, got %+v", got)
	}

	var during State
	playerRepo.
		On("FindByTeamID", mock.Anything, "team-a").
		Run(func(mock.Arguments) { during = store.Snapshot() }).
		Return(playersA, nil).
		Once()

	store.SelectTeam(ctx, &teamA)

	if during.CurrentTeam == nil || during.CurrentTeam.ID != "team-a" {
		t.Fatalf("current team must be set before players load: %+v", during.CurrentTeam)
	}
	if len(during.Players) != 0 {
		t.Fatalf("players must be cleared before the load resolves, got %+v", during.Players)
	}

	final := store.Snapshot()
	if len(final.Players) != 1 || final.Players[0].ID != "pa1" {
		t.Fatalf("expected team-a roster after load, got %+v", final.Players)
	}
	if final.Loading || final.Error != "" {
		t.Fatalf("unexpected final flags: %+v", final)
	}
}

func TestTeamStore_SelectNoTeam(t *testing.T) {
	store, _, playerRepo := newMockedStore(t)
	playerRepo.
		On("FindByTeamID", mock.Anything, "team-b").
		Return([]player.Player{{ID: "pb1", TeamID: "team-b"}}, nil).
		Once()
	store.LoadPlayers(context.Background(), "team-b")

	store.SelectTeam(context.Background(), nil)

	state := store.Snapshot()
	if state.CurrentTeam != nil || len(state.Players) != 0 {
		t.Fatalf("deselecting must clear current team and roster: %+v", state)
	}
	playerRepo.AssertNumberOfCalls(t, "FindByTeamID", 1)
}

func TestTeamStore_LoadPlayersFailureIsRecorded(t *testing.T) {
	store, _, playerRepo := newMockedStore(t)
	playerRepo.
		On("FindByTeamID", mock.Anything, "team-a").
		Return(nil, apperror.Persistence(errors.New("disk I/O error"), "find players by team")).
		Once()

	store.LoadPlayers(context.Background(), "team-a")

	state := store.Snapshot()
	if state.Error != msgLoadPlayers {
		t.Fatalf("unexpected error message: %q", state.Error)
	}
	if state.Loading {
		t.Fatalf("loading must stop after a failure")
	}

	store.ClearError()
	if store.Snapshot().Error != "" {
		t.Fatalf("ClearError must drop the message")
	}
}

func TestTeamStore_CreatePlayerConflict(t *testing.T) {
	ctx := context.Background()
	store, _, playerRepo := newMockedStore(t)

	conflict := player.CheckJerseyAvailable(10, &player.Player{ID: "p1", TeamID: "team-a", Name: "John Doe"}, "")
	input := player.NewPlayer{TeamID: "team-a", Name: "Jane Smith", JerseyNumber: 10, Positions: []player.Position{player.PositionDefender}}
	playerRepo.
		On("Create", mock.Anything, input).
		Return(player.Player{}, conflict).
		Once()

	_, err := store.CreatePlayer(ctx, input)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict to be returned, got %v", err)
	}
	state := store.Snapshot()
	if state.Error != "Jersey number 10 is already taken by John Doe" {
		t.Fatalf("unexpected error message: %q", state.Error)
	}
	if len(state.Players) != 0 {
		t.Fatalf("failed create must not add a player: %+v", state.Players)
	}
}

func TestTeamStore_MutationsReconcileState(t *testing.T) {
	ctx := context.Background()
	store, teamRepo, playerRepo := newMockedStore(t)

	created := team.Team{ID: "team-a", Name: "Lightning U12"}
	teamRepo.On("Create", mock.Anything, mock.AnythingOfType("team.NewTeam")).Return(created, nil).Once()
	if _, err := store.CreateTeam(ctx, team.NewTeam{Name: "Lightning U12"}); err != nil {
		t.Fatalf("create team: %v", err)
	}

	john := player.Player{ID: "p1", TeamID: "team-a", Name: "John Doe", JerseyNumber: 10, IsActive: true}
	playerRepo.On("FindByTeamID", mock.Anything, "team-a").Return([]player.Player{john}, nil).Once()
	store.SelectTeam(ctx, &created)

	inactive := john
	inactive.IsActive = false
	playerRepo.On("Update", mock.Anything, "p1", mock.MatchedBy(func(p player.Patch) bool {
		return p.IsActive != nil && !*p.IsActive
	})).Return(inactive, nil).Once()
	if _, err := store.DeactivatePlayer(ctx, "p1"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if store.Snapshot().Players[0].IsActive {
		t.Fatalf("roster must reflect the deactivated player")
	}

	renamed := created
	renamed.Name = "Lightning U13"
	teamRepo.On("Update", mock.Anything, "team-a", mock.AnythingOfType("team.Patch")).Return(renamed, nil).Once()
	name := "Lightning U13"
	if _, err := store.UpdateTeam(ctx, "team-a", team.Patch{Name: &name}); err != nil {
		t.Fatalf("update team: %v", err)
	}
	if got := store.Snapshot().CurrentTeam; got == nil || got.Name != "Lightning U13" {
		t.Fatalf("current team must be refreshed: %+v", got)
	}

	teamRepo.On("Delete", mock.Anything, "team-a").Return(nil).Once()
	if err := store.DeleteTeam(ctx, "team-a"); err != nil {
		t.Fatalf("delete team: %v", err)
	}
	state := store.Snapshot()
	if len(state.Teams) != 0 || state.CurrentTeam != nil || len(state.Players) != 0 {
		t.Fatalf("deleting the current team must clear it: %+v", state)
	}
}

func TestTeamStore_DeleteFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	store, teamRepo, _ := newMockedStore(t)

	teamRepo.On("FindAll", mock.Anything).Return([]team.Team{{ID: "team-a"}}, nil).Once()
	store.LoadTeams(ctx)

	teamRepo.On("Delete", mock.Anything, "team-a").Return(apperror.Persistence(errors.New("locked"), "delete team")).Once()
	err := store.DeleteTeam(ctx, "team-a")
	if !errors.Is(err, apperror.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	state := store.Snapshot()
	if state.Error != msgDeleteTeam || len(state.Teams) != 1 {
		t.Fatalf("unexpected state after failed delete: %+v", state)
	}
}

func TestTeamStore_InitializeFailure(t *testing.T) {
	ctx := context.Background()
	teamRepo := teammock.NewRepository(t)
	stub := &stubPersistence{initErr: apperror.Initialization(errors.New("disk full")), teams: teamRepo}
	store := NewTeamStore(stub, logging.NewNop(), 0)

	err := store.Initialize(ctx)
	if !errors.Is(err, apperror.ErrInitialization) {
		t.Fatalf("expected ErrInitialization, got %v", err)
	}
	state := store.Snapshot()
	if state.Initialized || state.Error != msgInitialize || state.Loading {
		t.Fatalf("unexpected state after failed initialize: %+v", state)
	}

	stub.initErr = nil
	teamRepo.On("FindAll", mock.Anything).Return([]team.Team{{ID: "team-a"}}, nil).Once()
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("retry initialize: %v", err)
	}
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("repeat initialize: %v", err)
	}
	state = store.Snapshot()
	if !state.Initialized || len(state.Teams) != 1 || state.Error != "" {
		t.Fatalf("unexpected state after initialize: %+v", state)
	}
	if stub.initCalls != 2 {
		t.Fatalf("initialized store must not reopen persistence, got %d calls", stub.initCalls)
	}
}

func TestTeamStore_NotInitialized(t *testing.T) {
	store := NewTeamStore(&stubPersistence{}, logging.NewNop(), 0)

	_, err := store.CreateTeam(context.Background(), team.NewTeam{Name: "Lightning U12"})
	if !errors.Is(err, apperror.ErrNotInitialized) || !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected not-initialized dependency error, got %v", err)
	}
	if store.Snapshot().Error != msgCreateTeam {
		t.Fatalf("unexpected error message: %q", store.Snapshot().Error)
	}
}

func TestTeamStore_Subscribe(t *testing.T) {
	store, teamRepo, _ := newMockedStore(t)
	teamRepo.On("FindAll", mock.Anything).Return([]team.Team{{ID: "team-a"}}, nil).Twice()

	var seen []State
	unsubscribe := store.Subscribe(func(state State) { seen = append(seen, state) })

	store.LoadTeams(context.Background())
	if len(seen) != 2 || !seen[0].Loading || seen[1].Loading || len(seen[1].Teams) != 1 {
		t.Fatalf("unexpected notifications: %+v", seen)
	}

	unsubscribe()
	store.LoadTeams(context.Background())
	if len(seen) != 2 {
		t.Fatalf("unsubscribed listener still notified: %d", len(seen))
	}
}

func TestTeamStore_LightningScenario(t *testing.T) {
	ctx := context.Background()
	p := persistence.New(persistence.Config{Driver: persistence.DriverMemory}, persistence.Options{
		Logger:      logging.NewNop(),
		Clock:       clockwork.NewFakeClock(),
		IDGenerator: idgen.NewSequenceGenerator("id"),
	})
	store := NewTeamStore(p, logging.NewNop(), 0)
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	settings := team.DefaultSettings()
	lightning, err := store.CreateTeam(ctx, team.NewTeam{Name: "Lightning U12", Settings: settings})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	store.SelectTeam(ctx, &lightning)

	if _, err := store.CreatePlayer(ctx, player.NewPlayer{
		TeamID: lightning.ID, Name: "John Doe", JerseyNumber: 10,
		Positions: []player.Position{player.PositionForward}, IsActive: true,
	}); err != nil {
		t.Fatalf("create john: %v", err)
	}
	_, err = store.CreatePlayer(ctx, player.NewPlayer{
		TeamID: lightning.ID, Name: "Jane Smith", JerseyNumber: 10,
		Positions: []player.Position{player.PositionMidfielder}, IsActive: true,
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	state := store.Snapshot()
	if state.Error != "Jersey number 10 is already taken by John Doe" {
		t.Fatalf("unexpected error message: %q", state.Error)
	}
	if len(state.Players) != 1 || state.Players[0].Name != "John Doe" {
		t.Fatalf("unexpected roster: %+v", state.Players)
	}

	recent, err := store.RecentTeams(ctx)
	if err != nil {
		t.Fatalf("recent teams: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != lightning.ID {
		t.Fatalf("unexpected recent teams: %+v", recent)
	}

	store.Reset()
	if store.Snapshot().Initialized {
		t.Fatalf("reset must clear the initialized flag")
	}
}

func TestTeamStore_OverlappingLoadsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	playersA := []player.Player{{ID: "pa1", TeamID: "team-a", Name: "John Doe", JerseyNumber: 10}}
	playersB := []player.Player{{ID: "pb1", TeamID: "team-b", Name: "Jane Smith", JerseyNumber: 7}}

	// blockTeamA makes the team-a lookup wait until release is closed and
	// returns a channel that is closed once the lookup has started.
	blockTeamA := func(playerRepo *playermock.Repository, release <-chan struct{}) <-chan struct{} {
		started := make(chan struct{})
		playerRepo.
			On("FindByTeamID", mock.Anything, "team-a").
			Run(func(mock.Arguments) {
				close(started)
				<-release
			}).
			Return(playersA, nil).
			Once()
		playerRepo.
			On("FindByTeamID", mock.Anything, "team-b").
			Return(playersB, nil).
			Once()
		return started
	}

	t.Run("stale load lands after newer load", func(t *testing.T) {
		store, _, playerRepo := newMockedStore(t)
		release := make(chan struct{})
		started := blockTeamA(playerRepo, release)

		done := make(chan struct{})
		go func() {
			defer close(done)
			store.LoadPlayers(ctx, "team-a")
		}()
		<-started

		store.LoadPlayers(ctx, "team-b")
		if got := store.Snapshot().Players; len(got) != 1 || got[0].ID != "pb1" {
			t.Fatalf("expected team-b roster before release, got %+v", got)
		}

		close(release)
		<-done

		state := store.Snapshot()
		if len(state.Players) != 1 || state.Players[0].ID != "pa1" {
			t.Fatalf("expected the later reduction (team-a) to win, got %+v", state.Players)
		}
		if state.Loading || state.Error != "" {
			t.Fatalf("expected settled state, got %+v", state)
		}
	})

	t.Run("stale load lands under newly selected team", func(t *testing.T) {
		store, _, playerRepo := newMockedStore(t)
		release := make(chan struct{})
		started := blockTeamA(playerRepo, release)

		done := make(chan struct{})
		go func() {
			defer close(done)
			store.LoadPlayers(ctx, "team-a")
		}()
		<-started

		teamB := team.Team{ID: "team-b", Name: "Thunder U10"}
		store.SelectTeam(ctx, &teamB)
		if got := store.Snapshot().Players; len(got) != 1 || got[0].ID != "pb1" {
			t.Fatalf("expected team-b roster after select, got %+v", got)
		}

		close(release)
		<-done

		state := store.Snapshot()
		if state.CurrentTeam == nil || state.CurrentTeam.ID != "team-b" {
			t.Fatalf("expected team-b to stay selected, got %+v", state.CurrentTeam)
		}
		if len(state.Players) != 1 || state.Players[0].ID != "pa1" {
			t.Fatalf("expected the unfenced team-a roster to land last, got %+v", state.Players)
		}
	})
}
