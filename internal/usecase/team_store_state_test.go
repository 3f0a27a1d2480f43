package usecase

import (
	"testing"

	"github.com/riskibarqy/match-manager/internal/domain/player"
	"github.com/riskibarqy/match-manager/internal/domain/team"
)

func TestReduce_SetCurrentTeamClearsPlayers(t *testing.T) {
	state := initialState()
	state.Players = []player.Player{{ID: "p1", TeamID: "team-b"}}
	state.Loading = true
	state.Error = "previous"

	next := reduce(state, setCurrentTeam(&team.Team{ID: "team-a"}))
	if next.CurrentTeam == nil || next.CurrentTeam.ID != "team-a" {
		t.Fatalf("unexpected current team: %+v", next.CurrentTeam)
	}
	if len(next.Players) != 0 || next.Players == nil {
		t.Fatalf("players must be cleared to an empty list, got %#v", next.Players)
	}
	if next.Loading || next.Error != "" {
		t.Fatalf("selection must settle loading and error: %+v", next)
	}
	if len(state.Players) != 1 {
		t.Fatalf("reduce mutated its input")
	}
}

func TestReduce_UpdateTeamRefreshesCurrentTeam(t *testing.T) {
	current := team.Team{ID: "team-a", Name: "Old"}
	state := initialState()
	state.Teams = []team.Team{current, {ID: "team-b", Name: "Other"}}
	state.CurrentTeam = &current

	next := reduce(state, updateTeam(team.Team{ID: "team-a", Name: "New"}))
	if next.Teams[0].Name != "New" || next.Teams[1].Name != "Other" {
		t.Fatalf("unexpected teams: %+v", next.Teams)
	}
	if next.CurrentTeam == nil || next.CurrentTeam.Name != "New" {
		t.Fatalf("current team not refreshed: %+v", next.CurrentTeam)
	}
	if state.Teams[0].Name != "Old" || state.CurrentTeam.Name != "Old" {
		t.Fatalf("reduce mutated its input")
	}

	other := reduce(state, updateTeam(team.Team{ID: "team-b", Name: "Renamed"}))
	if other.CurrentTeam.Name != "Old" {
		t.Fatalf("updating another team must keep the current one: %+v", other.CurrentTeam)
	}
}

func TestReduce_DeleteTeam(t *testing.T) {
	current := team.Team{ID: "team-a"}
	state := initialState()
	state.Teams = []team.Team{current, {ID: "team-b"}}
	state.CurrentTeam = &current
	state.Players = []player.Player{{ID: "p1", TeamID: "team-a"}}

	other := reduce(state, deleteTeam("team-b"))
	if len(other.Teams) != 1 || other.CurrentTeam == nil || len(other.Players) != 1 {
		t.Fatalf("deleting another team must keep selection and roster: %+v", other)
	}

	next := reduce(state, deleteTeam("team-a"))
	if len(next.Teams) != 1 || next.Teams[0].ID != "team-b" {
		t.Fatalf("unexpected teams: %+v", next.Teams)
	}
	if next.CurrentTeam != nil || len(next.Players) != 0 {
		t.Fatalf("deleting the current team must clear selection and roster: %+v", next)
	}
}

func TestReduce_PlayerLifecycle(t *testing.T) {
	state := initialState()
	state = reduce(state, addPlayer(player.Player{ID: "p1", Name: "John"}))
	state = reduce(state, addPlayer(player.Player{ID: "p2", Name: "Jane"}))
	state = reduce(state, updatePlayer(player.Player{ID: "p1", Name: "Johnny"}))
	if len(state.Players) != 2 || state.Players[0].Name != "Johnny" {
		t.Fatalf("unexpected players: %+v", state.Players)
	}

	state = reduce(state, deletePlayer("p1"))
	if len(state.Players) != 1 || state.Players[0].ID != "p2" {
		t.Fatalf("unexpected players after delete: %+v", state.Players)
	}
}

func TestReduce_LoadingAndErrors(t *testing.T) {
	state := reduce(initialState(), setLoading(true))
	if !state.Loading {
		t.Fatalf("expected loading")
	}

	state = reduce(state, setError("Failed to load teams. Please try again."))
	if state.Loading || state.Error == "" {
		t.Fatalf("setError must record the message and stop loading: %+v", state)
	}

	state = reduce(state, setLoading(true))
	state = reduce(state, setTeams([]team.Team{{ID: "team-a"}}))
	if state.Loading || state.Error != "" || len(state.Teams) != 1 {
		t.Fatalf("success must settle loading and error: %+v", state)
	}

	state = reduce(state, setInitialized(true))
	state = reduce(state, resetState())
	if state.Initialized || len(state.Teams) != 0 || state.Teams == nil {
		t.Fatalf("reset must restore the initial state: %+v", state)
	}
}
