package app

import (
	"fmt"

	"github.com/riskibarqy/match-manager/internal/config"
	"github.com/riskibarqy/match-manager/internal/infrastructure/persistence"
	"github.com/riskibarqy/match-manager/internal/platform/logging"
	"github.com/riskibarqy/match-manager/internal/usecase"
)

// App wires the roster core for the command-line entry points.
type App struct {
	Config      config.Config
	Logger      *logging.Logger
	Persistence *persistence.Persistence
	Store       *usecase.TeamStore
	Seeder      *usecase.RosterSeeder
}

func New(cfg config.Config) (*App, error) {
	driver := persistence.Driver(cfg.StorageDriver)
	if driver == persistence.DriverSQLite && cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty for the %s driver", driver)
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)

	store := persistence.New(persistence.Config{
		Driver:      driver,
		Path:        cfg.DBPath,
		BusyTimeout: cfg.DBBusyTimeout,
	}, persistence.Options{Logger: logger})

	return &App{
		Config:      cfg,
		Logger:      logger,
		Persistence: store,
		Store:       usecase.NewTeamStore(store, logger, cfg.RecentTeamsLimit),
		Seeder:      usecase.NewRosterSeeder(store, cfg.SeedWorkers, logger),
	}, nil
}

// Close releases the database and flushes the logger.
func (a *App) Close() error {
	err := a.Persistence.Close()
	_ = a.Logger.Sync()
	return err
}
