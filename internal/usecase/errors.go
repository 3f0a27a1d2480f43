package usecase

import "errors"

var (
	ErrInvalidSeed           = errors.New("invalid seed file")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Messages recorded in State.Error when a repository call fails without a
// user-facing hint of its own.
const (
	msgInitialize   = "Failed to initialize application. Please restart."
	msgLoadTeams    = "Failed to load teams. Please try again."
	msgCreateTeam   = "Failed to create team. Please try again."
	msgUpdateTeam   = "Failed to update team. Please try again."
	msgDeleteTeam   = "Failed to delete team. Please try again."
	msgLoadPlayers  = "Failed to load players. Please try again."
	msgCreatePlayer = "Failed to create player. Please try again."
	msgUpdatePlayer = "Failed to update player. Please try again."
	msgDeletePlayer = "Failed to delete player. Please try again."
)
