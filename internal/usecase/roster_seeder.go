package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/match-manager/internal/domain/player"
	"github.com/riskibarqy/match-manager/internal/domain/team"
	"github.com/riskibarqy/match-manager/internal/platform/logging"
	"gopkg.in/yaml.v3"
)

const defaultSeedWorkers = 4

// SeedFile is the YAML roster format read by RosterSeeder.
type SeedFile struct {
	Teams []SeedTeam `yaml:"teams"`
}

type SeedTeam struct {
	Name     string       `yaml:"name"`
	Settings SeedSettings `yaml:"settings"`
	Players  []SeedPlayer `yaml:"players"`
}

// SeedSettings fields left out of the file fall back to
// team.DefaultSettings. An explicit 0 is kept.
type SeedSettings struct {
	Formation      string `yaml:"formation"`
	Strategy       string `yaml:"strategy"`
	ShiftLength    *int   `yaml:"shiftLength"`
	AdvanceWarning *int   `yaml:"advanceWarning"`
}

type SeedPlayer struct {
	Name      string   `yaml:"name"`
	Jersey    int      `yaml:"jersey"`
	Positions []string `yaml:"positions"`
	Inactive  bool     `yaml:"inactive"`
}

type SeededTeam struct {
	Team    team.Team
	Players []player.Player
}

type SeedFailure struct {
	Team   string
	Player string
	Err    error
}

func (f SeedFailure) Error() string {
	if f.Player == "" {
		return fmt.Sprintf("team %q: %v", f.Team, f.Err)
	}
	return fmt.Sprintf("team %q player %q: %v", f.Team, f.Player, f.Err)
}

// SeedResult lists created teams in file order. Failures do not stop the
// rest of the file from being seeded.
type SeedResult struct {
	Teams    []SeededTeam
	Failures []SeedFailure
	Duration time.Duration
}

// ParseSeedFile decodes a roster file, rejecting unknown keys.
func ParseSeedFile(r io.Reader) (SeedFile, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file SeedFile
	if err := decoder.Decode(&file); err != nil {
		if err == io.EOF {
			return SeedFile{}, fmt.Errorf("%w: file is empty", ErrInvalidSeed)
		}
		return SeedFile{}, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if len(file.Teams) == 0 {
		return SeedFile{}, fmt.Errorf("%w: no teams listed", ErrInvalidSeed)
	}
	for idx, item := range file.Teams {
		if strings.TrimSpace(item.Name) == "" {
			return SeedFile{}, fmt.Errorf("%w: team #%d has no name", ErrInvalidSeed, idx+1)
		}
	}
	return file, nil
}

// RosterSeeder creates the teams of a SeedFile concurrently. Players of one
// team are created in order by the worker that created the team, so jersey
// checks within a team never race.
type RosterSeeder struct {
	persistence Persistence
	workers     int
	logger      *logging.Logger
}

func NewRosterSeeder(persistence Persistence, workers int, logger *logging.Logger) *RosterSeeder {
	if workers <= 0 {
		workers = defaultSeedWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterSeeder{
		persistence: persistence,
		workers:     workers,
		logger:      logger.With("component", "roster_seeder"),
	}
}

func (s *RosterSeeder) Seed(ctx context.Context, file SeedFile) (SeedResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterSeeder.Seed")
	defer span.End()

	start := time.Now()
	if err := s.persistence.Initialize(ctx); err != nil {
		recordSpanError(span, err)
		return SeedResult{}, fmt.Errorf("initialize persistence: %w", err)
	}
	teamRepo, err := s.persistence.TeamRepository()
	if err != nil {
		return SeedResult{}, fmt.Errorf("%w: %w", ErrDependencyUnavailable, err)
	}
	playerRepo, err := s.persistence.PlayerRepository()
	if err != nil {
		return SeedResult{}, fmt.Errorf("%w: %w", ErrDependencyUnavailable, err)
	}

	workerCount := s.workers
	if workerCount > len(file.Teams) {
		workerCount = len(file.Teams)
	}
	if workerCount < 1 {
		return SeedResult{Duration: time.Since(start)}, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return SeedResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	type outcome struct {
		seeded   *SeededTeam
		failures []SeedFailure
	}
	outcomes := make([]outcome, len(file.Teams))

	var workers sync.WaitGroup
	for idx, item := range file.Teams {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			seeded, failures := s.seedTeam(ctx, teamRepo, playerRepo, item)
			outcomes[idx] = outcome{seeded: seeded, failures: failures}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return SeedResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	result := SeedResult{Teams: make([]SeededTeam, 0, len(file.Teams))}
	for _, row := range outcomes {
		if row.seeded != nil {
			result.Teams = append(result.Teams, *row.seeded)
		}
		result.Failures = append(result.Failures, row.failures...)
	}
	result.Duration = time.Since(start)

	s.logger.InfoContext(ctx, "roster seeded",
		"teams", len(result.Teams),
		"failures", len(result.Failures),
		"workers", workerCount,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (s *RosterSeeder) seedTeam(ctx context.Context, teamRepo team.Repository, playerRepo player.Repository, item SeedTeam) (*SeededTeam, []SeedFailure) {
	settings, err := item.Settings.toSettings()
	if err != nil {
		return nil, []SeedFailure{{Team: item.Name, Err: err}}
	}

	created, err := teamRepo.Create(ctx, team.NewTeam{Name: item.Name, Settings: settings})
	if err != nil {
		s.logger.WarnContext(ctx, "seed team failed", "team", item.Name, "error", err)
		return nil, []SeedFailure{{Team: item.Name, Err: err}}
	}

	seeded := &SeededTeam{Team: created, Players: make([]player.Player, 0, len(item.Players))}
	var failures []SeedFailure
	for _, entry := range item.Players {
		positions := make([]player.Position, 0, len(entry.Positions))
		for _, pos := range entry.Positions {
			positions = append(positions, player.Position(strings.ToLower(strings.TrimSpace(pos))))
		}

		p, err := playerRepo.Create(ctx, player.NewPlayer{
			TeamID:       created.ID,
			Name:         entry.Name,
			JerseyNumber: entry.Jersey,
			Positions:    positions,
			IsActive:     !entry.Inactive,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "seed player failed", "team", item.Name, "player", entry.Name, "error", err)
			failures = append(failures, SeedFailure{Team: item.Name, Player: entry.Name, Err: err})
			continue
		}
		seeded.Players = append(seeded.Players, p)
	}

	return seeded, failures
}

func (s SeedSettings) toSettings() (team.Settings, error) {
	settings := team.DefaultSettings()
	if s.Formation != "" {
		formation, ok := team.FormationByName(s.Formation)
		if !ok {
			return team.Settings{}, fmt.Errorf("%w: unknown formation %q", ErrInvalidSeed, s.Formation)
		}
		settings.DefaultFormation = formation
	}
	if s.Strategy != "" {
		settings.PreferredStrategy = team.SubstitutionStrategy(s.Strategy)
	}
	if s.ShiftLength != nil {
		settings.DefaultShiftLength = *s.ShiftLength
	}
	if s.AdvanceWarning != nil {
		settings.AdvanceWarningTime = *s.AdvanceWarning
	}
	return settings, nil
}
