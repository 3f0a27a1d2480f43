package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/match-manager/internal/domain/apperror"
	"github.com/riskibarqy/match-manager/internal/domain/player"
	"github.com/riskibarqy/match-manager/internal/domain/team"
	"github.com/riskibarqy/match-manager/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

// Persistence hands out repositories once the database is open.
type Persistence interface {
	Initialize(ctx context.Context) error
	TeamRepository() (team.Repository, error)
	PlayerRepository() (player.Repository, error)
}

// TeamStore keeps the loaded teams and the roster of the selected team, and
// reconciles repository results into that state. Actions are not fenced:
// overlapping calls each apply their result and the last reduction wins.
type TeamStore struct {
	persistence Persistence
	logger      *logging.Logger
	recentLimit int

	mu          sync.Mutex
	state       State
	nextSubID   int
	subscribers []subscriber
}

type subscriber struct {
	id int
	fn func(State)
}

func NewTeamStore(persistence Persistence, logger *logging.Logger, recentLimit int) *TeamStore {
	if logger == nil {
		logger = logging.Default()
	}
	if recentLimit <= 0 {
		recentLimit = team.DefaultRecentLimit
	}
	return &TeamStore{
		persistence: persistence,
		logger:      logger.With("component", "team_store"),
		recentLimit: recentLimit,
		state:       initialState(),
	}
}

// Snapshot returns a copy of the current state.
func (s *TeamStore) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to receive the state after every reduction.
func (s *TeamStore) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for idx, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:idx:idx], s.subscribers[idx+1:]...)
				return
			}
		}
	}
}

func (s *TeamStore) dispatch(act action) {
	s.mu.Lock()
	s.state = reduce(s.state, act)
	snapshot := s.state.clone()
	subscribers := append([]subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	for _, sub := range subscribers {
		sub.fn(snapshot)
	}
}

// fail records the user-facing message for err in the state.
func (s *TeamStore) fail(ctx context.Context, span trace.Span, op string, err error, fallback string) {
	recordSpanError(span, err)
	s.logger.WarnContext(ctx, "team store action failed", "action", op, "error", err)
	s.dispatch(setError(apperror.UserMessage(err, fallback)))
}

// Initialize opens persistence and loads every team. It does nothing once
// the store is initialized.
func (s *TeamStore) Initialize(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamStore.Initialize")
	defer span.End()

	if s.Snapshot().Initialized {
		return nil
	}

	s.dispatch(setLoading(true))
	teams, err := s.initialize(ctx)
	if err != nil {
		recordSpanError(span, err)
		s.logger.ErrorContext(ctx, "team store initialization failed", "error", err)
		s.dispatch(setError(msgInitialize))
		return err
	}

	s.dispatch(setTeams(teams))
	s.dispatch(setInitialized(true))
	return nil
}

func (s *TeamStore) initialize(ctx context.Context) ([]team.Team, error) {
	if err := s.persistence.Initialize(ctx); err != nil {
		return nil, err
	}
	repo, err := s.teamRepository()
	if err != nil {
		return nil, err
	}
	teams, err := repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	return teams, nil
}

// LoadTeams refreshes the team list. Failures are recorded, not returned.
func (s *TeamStore) LoadTeams(ctx context.Context) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamStore.LoadTeams")
	defer span.End()

	s.dispatch(setLoading(true))
	repo, err := s.teamRepository()
	if err != nil {
		s.fail(ctx, span, "load_teams", err, msgLoadTeams)
		return
	}
	teams, err := repo.FindAll(ctx)
	if err != nil {
		s.fail(ctx, span, "load_teams", err, msgLoadTeams)
		return
	}
	s.dispatch(setTeams(teams))
}

// RecentTeams lists the most recently created teams without touching the
// store state.
func (s *TeamStore) RecentTeams(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamStore.RecentTeams")
	defer span.End()

	repo, err := s.teamRepository()
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	teams, err := repo.FindRecent(ctx, s.recentLimit)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("find recent teams: %w", err)
	}
	return teams, nil
}

func (s *TeamStore) CreateTeam(ctx context.Context, input team.NewTeam) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamStore.CreateTeam")
	defer span.End()

	s.dispatch(setLoading(true))
	repo, err := s.teamRepository()
	if err != nil {
		s.fail(ctx, span, "create_team", err, msgCreateTeam)
		return team.Team{}, err
	}
	created, err := repo.Create(ctx, input)
	if err != nil {
		s.fail(ctx, span, "create_team", err, msgCreateTeam)
		return team.Team{}, err
	}
	s.dispatch(addTeam(created))
	return created, nil
}

func (s *TeamStore) UpdateTeam(ctx context.Context, id string, patch team.Patch) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamStore.UpdateTeam")
	defer span.End()

	s.dispatch(setLoading(true))
	repo, err := s.teamRepository()
	if err != nil {
		s.fail(ctx, span, "update_team", err, msgUpdateTeam)
		return team.Team{}, err
	}
	updated, err := repo.Update(ctx, id, patch)
	if err != nil {
		s.fail(ctx, span, "update_team", err, msgUpdateTeam)
		return team.Team{}, err
	}
	s.dispatch(updateTeam(updated))
	return updated, nil
}

func (s *TeamStore) DeleteTeam(ctx context.Context, id string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamStore.DeleteTeam")
	defer span.End()

	s.dispatch(setLoading(true))
	repo, err := s.teamRepository()
	if err != nil {
		s.fail(ctx, span, "delete_team", err, msgDeleteTeam)
		return err
	}
	if err := repo.Delete(ctx, id); err != nil {
		s.fail(ctx, span, "delete_team", err, msgDeleteTeam)
		return err
	}
	s.dispatch(deleteTeam(id))
	return nil
}

// SelectTeam makes item the current team, clears the roster and, when item
// is not nil, loads its players. Failures are recorded, not returned.
func (s *TeamStore) SelectTeam(ctx context.Context, item *team.Team) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamStore.SelectTeam")
	defer span.End()

	var current *team.Team
	if item != nil {
		selected := cloneTeam(*item)
		current = &selected
	}
	s.dispatch(setCurrentTeam(current))

	if current != nil {
		s.LoadPlayers(ctx, current.ID)
	}
}

// LoadPlayers replaces the roster with the players of teamID. Failures are
// recorded, not returned.
func (s *TeamStore) LoadPlayers(ctx context.Context, teamID string) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamStore.LoadPlayers")
	defer span.End()

	s.dispatch(setLoading(true))
	repo, err := s.playerRepository()
	if err != nil {
		s.fail(ctx, span, "load_players", err, msgLoadPlayers)
		return
	}
	players, err := repo.FindByTeamID(ctx, teamID)
	if err != nil {
		s.fail(ctx, span, "load_players", err, msgLoadPlayers)
		return
	}
	s.dispatch(setPlayers(players))
}

func (s *TeamStore) CreatePlayer(ctx context.Context, input player.NewPlayer) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamStore.CreatePlayer")
	defer span.End()

	s.dispatch(setLoading(true))
	repo, err := s.playerRepository()
	if err != nil {
		s.fail(ctx, span, "create_player", err, msgCreatePlayer)
		return player.Player{}, err
	}
	created, err := repo.Create(ctx, input)
	if err != nil {
		s.fail(ctx, span, "create_player", err, msgCreatePlayer)
		return player.Player{}, err
	}
	s.dispatch(addPlayer(created))
	return created, nil
}

func (s *TeamStore) UpdatePlayer(ctx context.Context, id string, patch player.Patch) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamStore.UpdatePlayer")
	defer span.End()

	s.dispatch(setLoading(true))
	repo, err := s.playerRepository()
	if err != nil {
		s.fail(ctx, span, "update_player", err, msgUpdatePlayer)
		return player.Player{}, err
	}
	updated, err := repo.Update(ctx, id, patch)
	if err != nil {
		s.fail(ctx, span, "update_player", err, msgUpdatePlayer)
		return player.Player{}, err
	}
	s.dispatch(updatePlayer(updated))
	return updated, nil
}

// DeactivatePlayer and ReactivatePlayer are UpdatePlayer calls that only
// flip IsActive.
func (s *TeamStore) DeactivatePlayer(ctx context.Context, id string) (player.Player, error) {
	active := false
	return s.UpdatePlayer(ctx, id, player.Patch{IsActive: &active})
}

func (s *TeamStore) ReactivatePlayer(ctx context.Context, id string) (player.Player, error) {
	active := true
	return s.UpdatePlayer(ctx, id, player.Patch{IsActive: &active})
}

func (s *TeamStore) DeletePlayer(ctx context.Context, id string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamStore.DeletePlayer")
	defer span.End()

	s.dispatch(setLoading(true))
	repo, err := s.playerRepository()
	if err != nil {
		s.fail(ctx, span, "delete_player", err, msgDeletePlayer)
		return err
	}
	if err := repo.Delete(ctx, id); err != nil {
		s.fail(ctx, span, "delete_player", err, msgDeletePlayer)
		return err
	}
	s.dispatch(deletePlayer(id))
	return nil
}

// ClearError drops the recorded error message.
func (s *TeamStore) ClearError() {
	s.dispatch(setError(""))
}

// Reset returns the store to its initial, uninitialized state.
func (s *TeamStore) Reset() {
	s.dispatch(resetState())
}

func (s *TeamStore) teamRepository() (team.Repository, error) {
	repo, err := s.persistence.TeamRepository()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDependencyUnavailable, err)
	}
	return repo, nil
}

func (s *TeamStore) playerRepository() (player.Repository, error) {
	repo, err := s.persistence.PlayerRepository()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDependencyUnavailable, err)
	}
	return repo, nil
}
