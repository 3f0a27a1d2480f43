package usecase

import (
	"slices"

	"github.com/riskibarqy/match-manager/internal/domain/player"
	"github.com/riskibarqy/match-manager/internal/domain/team"
)

// State is what the TeamStore knows about the loaded roster. Players always
// belong to CurrentTeam when one is selected.
type State struct {
	Teams       []team.Team
	CurrentTeam *team.Team
	Players     []player.Player
	Loading     bool
	Error       string
	Initialized bool
}

func initialState() State {
	return State{
		Teams:   []team.Team{},
		Players: []player.Player{},
	}
}

func (s State) clone() State {
	out := s
	out.Teams = make([]team.Team, 0, len(s.Teams))
	for _, item := range s.Teams {
		out.Teams = append(out.Teams, cloneTeam(item))
	}
	out.Players = make([]player.Player, 0, len(s.Players))
	for _, item := range s.Players {
		out.Players = append(out.Players, clonePlayer(item))
	}
	if s.CurrentTeam != nil {
		current := cloneTeam(*s.CurrentTeam)
		out.CurrentTeam = &current
	}
	return out
}

type actionKind int

const (
	actionSetLoading actionKind = iota + 1
	actionSetError
	actionSetInitialized
	actionSetTeams
	actionAddTeam
	actionUpdateTeam
	actionDeleteTeam
	actionSetCurrentTeam
	actionSetPlayers
	actionAddPlayer
	actionUpdatePlayer
	actionDeletePlayer
	actionResetState
)

type action struct {
	kind    actionKind
	flag    bool
	message string
	id      string
	team    *team.Team
	teams   []team.Team
	player  player.Player
	players []player.Player
}

func setLoading(loading bool) action {
	return action{kind: actionSetLoading, flag: loading}
}

func setError(message string) action {
	return action{kind: actionSetError, message: message}
}

func setInitialized(ok bool) action {
	return action{kind: actionSetInitialized, flag: ok}
}

func setTeams(teams []team.Team) action {
	return action{kind: actionSetTeams, teams: teams}
}

func addTeam(item team.Team) action {
	return action{kind: actionAddTeam, team: &item}
}

func updateTeam(item team.Team) action {
	return action{kind: actionUpdateTeam, team: &item}
}

func deleteTeam(id string) action {
	return action{kind: actionDeleteTeam, id: id}
}

func setCurrentTeam(item *team.Team) action {
	return action{kind: actionSetCurrentTeam, team: item}
}

func setPlayers(players []player.Player) action {
	return action{kind: actionSetPlayers, players: players}
}

func addPlayer(item player.Player) action {
	return action{kind: actionAddPlayer, player: item}
}

func updatePlayer(item player.Player) action {
	return action{kind: actionUpdatePlayer, player: item}
}

func deletePlayer(id string) action {
	return action{kind: actionDeletePlayer, id: id}
}

func resetState() action {
	return action{kind: actionResetState}
}

// reduce returns the state that follows act. It never mutates state's slices.
func reduce(state State, act action) State {
	next := state
	switch act.kind {
	case actionSetLoading:
		next.Loading = act.flag
	case actionSetError:
		next.Error = act.message
		next.Loading = false
	case actionSetInitialized:
		next.Initialized = act.flag
	case actionSetTeams:
		next.Teams = append([]team.Team{}, act.teams...)
		next = settled(next)
	case actionAddTeam:
		next.Teams = append(slices.Clip(state.Teams), *act.team)
		next = settled(next)
	case actionUpdateTeam:
		next.Teams = replaceByID(state.Teams, *act.team, func(t team.Team) string { return t.ID })
		if state.CurrentTeam != nil && state.CurrentTeam.ID == act.team.ID {
			current := *act.team
			next.CurrentTeam = &current
		}
		next = settled(next)
	case actionDeleteTeam:
		next.Teams = removeByID(state.Teams, act.id, func(t team.Team) string { return t.ID })
		if state.CurrentTeam != nil && state.CurrentTeam.ID == act.id {
			next.CurrentTeam = nil
			next.Players = []player.Player{}
		}
		next = settled(next)
	case actionSetCurrentTeam:
		next.CurrentTeam = act.team
		next.Players = []player.Player{}
		next = settled(next)
	case actionSetPlayers:
		next.Players = append([]player.Player{}, act.players...)
		next = settled(next)
	case actionAddPlayer:
		next.Players = append(slices.Clip(state.Players), act.player)
		next = settled(next)
	case actionUpdatePlayer:
		next.Players = replaceByID(state.Players, act.player, func(p player.Player) string { return p.ID })
		next = settled(next)
	case actionDeletePlayer:
		next.Players = removeByID(state.Players, act.id, func(p player.Player) string { return p.ID })
		next = settled(next)
	case actionResetState:
		next = initialState()
	}
	return next
}

func settled(state State) State {
	state.Loading = false
	state.Error = ""
	return state
}

func replaceByID[T any](items []T, item T, id func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, existing := range items {
		if id(existing) == id(item) {
			out = append(out, item)
			continue
		}
		out = append(out, existing)
	}
	return out
}

func removeByID[T any](items []T, target string, id func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, existing := range items {
		if id(existing) != target {
			out = append(out, existing)
		}
	}
	return out
}

func cloneTeam(item team.Team) team.Team {
	item.Settings = item.Settings.Clone()
	return item
}

func clonePlayer(item player.Player) player.Player {
	item.Positions = slices.Clone(item.Positions)
	return item
}
