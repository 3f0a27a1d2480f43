package schema

const (
	StoreTeams              = "teams"
	StorePlayers            = "players"
	StoreGames              = "games"
	StorePlayerGameStatus   = "player_game_status"
	StorePlayingTimeRecords = "playing_time_records"
	StoreSubstitutionEvents = "substitution_events"
	StoreFormations         = "formations"
	StoreSyncQueue          = "sync_queue"
)

// MatchManager is version 1 of the MatchManagerDB layout. Only teams and
// players are read and written by this module; the remaining stores are
// reserved for game tracking and sync.
var MatchManager = DatabaseSchema{
	Name:    "MatchManagerDB",
	Version: 1,
	Stores: []StoreConfig{
		{
			Name:    StoreTeams,
			KeyPath: KeyPath{"id"},
			Indexes: []IndexConfig{
				{Name: "name", KeyPath: KeyPath{"name"}},
				{Name: "createdAt", KeyPath: KeyPath{"createdAt"}},
			},
		},
		{
			Name:    StorePlayers,
			KeyPath: KeyPath{"id"},
			Indexes: []IndexConfig{
				{Name: "teamId", KeyPath: KeyPath{"teamId"}},
				{Name: "jerseyNumber", KeyPath: KeyPath{"teamId", "jerseyNumber"}, Unique: true},
				{Name: "isActive", KeyPath: KeyPath{"isActive"}},
				{Name: "positions", KeyPath: KeyPath{"positions"}, MultiEntry: true},
			},
		},
		{
			Name:    StoreGames,
			KeyPath: KeyPath{"id"},
			Indexes: []IndexConfig{
				{Name: "teamId", KeyPath: KeyPath{"teamId"}},
				{Name: "date", KeyPath: KeyPath{"date"}},
				{Name: "status", KeyPath: KeyPath{"status"}},
				{Name: "teamId_status", KeyPath: KeyPath{"teamId", "status"}},
			},
		},
		{
			Name:    StorePlayerGameStatus,
			KeyPath: KeyPath{"playerId", "gameId"},
			Indexes: []IndexConfig{
				{Name: "playerId", KeyPath: KeyPath{"playerId"}},
				{Name: "gameId", KeyPath: KeyPath{"gameId"}},
				{Name: "availability", KeyPath: KeyPath{"availability"}},
				{Name: "substitutionStatus", KeyPath: KeyPath{"substitutionStatus"}},
				{Name: "gameId_onField", KeyPath: KeyPath{"gameId", "substitutionStatus"}},
			},
		},
		{
			Name:    StorePlayingTimeRecords,
			KeyPath: KeyPath{"id"},
			Indexes: []IndexConfig{
				{Name: "playerId", KeyPath: KeyPath{"playerId"}},
				{Name: "gameId", KeyPath: KeyPath{"gameId"}},
				{Name: "playerId_gameId", KeyPath: KeyPath{"playerId", "gameId"}},
				{Name: "startTime", KeyPath: KeyPath{"startTime"}},
				{Name: "endTime", KeyPath: KeyPath{"endTime"}},
				{Name: "active_records", KeyPath: KeyPath{"gameId", "endTime"}},
			},
		},
		{
			Name:    StoreSubstitutionEvents,
			KeyPath: KeyPath{"id"},
			Indexes: []IndexConfig{
				{Name: "gameId", KeyPath: KeyPath{"gameId"}},
				{Name: "playerOffId", KeyPath: KeyPath{"playerOffId"}},
				{Name: "playerOnId", KeyPath: KeyPath{"playerOnId"}},
				{Name: "gameTimeSeconds", KeyPath: KeyPath{"gameTimeSeconds"}},
				{Name: "timestamp", KeyPath: KeyPath{"timestamp"}},
			},
		},
		{
			Name:    StoreFormations,
			KeyPath: KeyPath{"name"},
			Indexes: []IndexConfig{
				{Name: "name", KeyPath: KeyPath{"name"}, Unique: true},
			},
		},
		{
			Name:    StoreSyncQueue,
			KeyPath: KeyPath{"id"},
			Indexes: []IndexConfig{
				{Name: "entityType", KeyPath: KeyPath{"entityType"}},
				{Name: "operation", KeyPath: KeyPath{"operation"}},
				{Name: "createdAt", KeyPath: KeyPath{"createdAt"}},
				{Name: "status", KeyPath: KeyPath{"status"}},
			},
		},
	},
}
