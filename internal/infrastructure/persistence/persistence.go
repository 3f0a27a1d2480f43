// Package persistence owns the storage connection and hands out the team and
// player repositories once it has been initialized.
package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/match-manager/internal/domain/apperror"
	"github.com/riskibarqy/match-manager/internal/domain/player"
	"github.com/riskibarqy/match-manager/internal/domain/team"
	"github.com/riskibarqy/match-manager/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/match-manager/internal/infrastructure/repository/sqlite"
	idgen "github.com/riskibarqy/match-manager/internal/platform/id"
	"github.com/riskibarqy/match-manager/internal/platform/logging"
	"github.com/riskibarqy/match-manager/internal/platform/objectstore"
	"github.com/riskibarqy/match-manager/internal/platform/resilience"
	"github.com/riskibarqy/match-manager/internal/platform/schema"
)

type Driver string

const (
	DriverSQLite Driver = "sqlite"
	DriverMemory Driver = "memory"
)

type Config struct {
	Driver      Driver
	Path        string
	BusyTimeout time.Duration
}

type Options struct {
	Logger      *logging.Logger
	Clock       clockwork.Clock
	IDGenerator idgen.Generator
}

type Persistence struct {
	cfg    Config
	opts   Options
	logger *logging.Logger
	flight resilience.Flight[struct{}]

	mu          sync.RWMutex
	initialized bool
	db          *objectstore.DB
	teams       team.Repository
	players     player.Repository
	memTeams    *memory.TeamRepository
}

func New(cfg Config, opts Options) *Persistence {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = idgen.NewUUIDGenerator()
	}

	return &Persistence{
		cfg:    cfg,
		opts:   opts,
		logger: logger.With("component", "persistence", "driver", string(cfg.Driver)),
	}
}

// Initialize opens the database and builds the repositories. It is safe to
// call repeatedly; concurrent callers share one attempt.
func (p *Persistence) Initialize(ctx context.Context) error {
	if p.IsInitialized() {
		return nil
	}

	_, _, err := p.flight.Do(ctx, "initialize", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.initialize(ctx)
	})
	return err
}

func (p *Persistence) initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	switch p.cfg.Driver {
	case DriverSQLite:
		db, err := objectstore.Open(ctx, objectstore.Options{
			Path:        p.cfg.Path,
			Schema:      schema.MatchManager,
			BusyTimeout: p.cfg.BusyTimeout,
			Logger:      p.logger,
		})
		if err != nil {
			p.logger.ErrorContext(ctx, "persistence initialization failed", "path", p.cfg.Path, "error", err)
			return apperror.Initialization(err)
		}
		p.db = db
		p.teams = sqlite.NewTeamRepository(db, p.opts.Clock, p.opts.IDGenerator)
		p.players = sqlite.NewPlayerRepository(db, p.opts.Clock, p.opts.IDGenerator)
	case DriverMemory:
		p.memTeams = memory.NewTeamRepository(p.opts.Clock, p.opts.IDGenerator)
		p.teams = p.memTeams
		p.players = memory.NewPlayerRepository(p.opts.Clock, p.opts.IDGenerator)
	default:
		return apperror.Initialization(fmt.Errorf("unsupported storage driver %q", p.cfg.Driver))
	}

	p.initialized = true
	p.logger.InfoContext(ctx, "persistence initialized", "path", p.cfg.Path)
	return nil
}

func (p *Persistence) IsInitialized() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.initialized
}

func (p *Persistence) TeamRepository() (team.Repository, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.initialized {
		return nil, apperror.NotInitialized()
	}
	return p.teams, nil
}

func (p *Persistence) PlayerRepository() (player.Repository, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.initialized {
		return nil, apperror.NotInitialized()
	}
	return p.players, nil
}

// CheckHealth reports whether the teams store can be read. It never fails;
// any problem, including a missing Initialize, reads as unhealthy.
func (p *Persistence) CheckHealth(ctx context.Context) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return false
	}
	if p.db == nil {
		return p.memTeams != nil
	}

	store, err := p.db.Store(schema.StoreTeams)
	if err != nil {
		p.logger.WarnContext(ctx, "health check failed", "error", err)
		return false
	}
	if _, err := store.Count(ctx); err != nil {
		p.logger.WarnContext(ctx, "health check failed", "error", err)
		return false
	}
	return true
}

// Reset closes the connection and deletes the database file. Meant for test
// teardown; every stored record is lost.
func (p *Persistence) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.closeLocked(); err != nil {
		return apperror.Persistence(err, "reset database")
	}
	if p.cfg.Driver == DriverSQLite {
		if err := objectstore.Delete(p.cfg.Path); err != nil {
			return apperror.Persistence(err, "reset database")
		}
	}

	p.logger.InfoContext(ctx, "persistence reset", "path", p.cfg.Path)
	return nil
}

// Close releases the connection and keeps the stored data. Initialize may
// be called again afterwards.
func (p *Persistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.closeLocked(); err != nil {
		return apperror.Persistence(err, "close database")
	}
	return nil
}

func (p *Persistence) closeLocked() error {
	var err error
	if p.db != nil {
		err = p.db.Close()
	}
	p.db = nil
	p.teams = nil
	p.players = nil
	p.memTeams = nil
	p.initialized = false
	return err
}
