// Package objectstore keeps JSON documents in named stores with secondary
// indexes, materialized from a schema.DatabaseSchema over an embedded SQLite
// file.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-manager/internal/platform/logging"
	qb "github.com/riskibarqy/match-manager/internal/platform/querybuilder"
	"github.com/riskibarqy/match-manager/internal/platform/schema"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	_ "modernc.org/sqlite"
)

type Options struct {
	// Path of the database file, or ":memory:".
	Path        string
	Schema      schema.DatabaseSchema
	BusyTimeout time.Duration
	Logger      *logging.Logger
}

type DB struct {
	db     *sqlx.DB
	schema schema.DatabaseSchema
	path   string
	logger *logging.Logger
	closed atomic.Bool
}

// Open opens the database and brings it to the schema version. A version
// change drops every table and recreates the stores empty.
func Open(ctx context.Context, opts Options) (*DB, error) {
	if err := opts.Schema.Validate(); err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}

	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if !isMemoryPath(path) {
		path = filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	sqlDB, err := otelsqlx.Open(driverName, buildDSN(path, opts.BusyTimeout),
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName(opts.Schema.Name),
		otelsql.WithQueryFormatter(formatQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:" alive.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	db := &DB{
		db:     sqlDB,
		schema: opts.Schema,
		path:   path,
		logger: logger,
	}
	if err := db.upgrade(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Path() string {
	return d.path
}

func (d *DB) Schema() schema.DatabaseSchema {
	return d.schema
}

// Version reports the schema version stored in the database file.
func (d *DB) Version(ctx context.Context) (int, error) {
	if err := d.ensureOpen(); err != nil {
		return 0, err
	}
	var version int
	if err := d.db.GetContext(ctx, &version, "PRAGMA user_version"); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("close sqlite db: %w", err)
	}
	return nil
}

// Store returns a store whose operations each run in their own implicit
// transaction.
func (d *DB) Store(name string) (*Store, error) {
	if err := d.ensureOpen(); err != nil {
		return nil, err
	}
	return d.bindStore(name, d.db)
}

// Update runs fn inside a read-write transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
func (d *DB) Update(ctx context.Context, fn func(tx *Tx) error) error {
	return d.runTx(ctx, true, fn)
}

// View runs fn inside a transaction that is always rolled back.
func (d *DB) View(ctx context.Context, fn func(tx *Tx) error) error {
	return d.runTx(ctx, false, fn)
}

func (d *DB) runTx(ctx context.Context, commit bool, fn func(tx *Tx) error) (err error) {
	if err := d.ensureOpen(); err != nil {
		return err
	}

	sqlTx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Tx{db: d, tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if !commit {
		_ = sqlTx.Rollback()
		return nil
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (d *DB) bindStore(name string, q querier) (*Store, error) {
	cfg, ok := d.schema.Store(name)
	if !ok {
		return nil, crerr.Wrapf(ErrUnknownStore, "store %q", name)
	}
	return &Store{cfg: cfg, q: q, db: d}, nil
}

func (d *DB) ensureOpen() error {
	if d == nil || d.db == nil || d.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (d *DB) upgrade(ctx context.Context) error {
	current, err := d.Version(ctx)
	if err != nil {
		return err
	}
	target := d.schema.Version
	if current == target {
		return nil
	}
	if current > target {
		return crerr.Wrapf(ErrVersion, "database %s is at version %d, schema is %d", d.schema.Name, current, target)
	}

	err = d.Update(ctx, func(tx *Tx) error {
		var tables []string
		if err := tx.tx.SelectContext(ctx, &tables,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name",
		); err != nil {
			return fmt.Errorf("list tables: %w", err)
		}
		for _, table := range tables {
			if _, err := tx.tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+qb.Ident(table)); err != nil {
				return fmt.Errorf("drop table %s: %w", table, err)
			}
		}

		for _, store := range d.schema.Stores {
			for _, stmt := range createStoreStatements(store) {
				if _, err := tx.tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("create store %s: %w", store.Name, err)
				}
			}
		}

		if _, err := tx.tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", target)); err != nil {
			return fmt.Errorf("write user_version: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upgrade %s from version %d to %d: %w", d.schema.Name, current, target, err)
	}

	d.logger.InfoContext(ctx, "object store upgraded",
		"database", d.schema.Name,
		"path", d.path,
		"from_version", current,
		"to_version", target,
	)
	return nil
}

// Delete removes a database file and its WAL and journal side files.
// Missing files are ignored.
func Delete(path string) error {
	path = strings.TrimSpace(path)
	if path == "" || isMemoryPath(path) {
		return nil
	}
	for _, file := range sideFiles(path) {
		if err := os.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", file, err)
		}
	}
	return nil
}
