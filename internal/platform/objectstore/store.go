package objectstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	qb "github.com/riskibarqy/match-manager/internal/platform/querybuilder"
	"github.com/riskibarqy/match-manager/internal/platform/schema"
)

type querier interface {
	sqlx.ExecerContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Tx scopes store operations to one transaction.
type Tx struct {
	db *DB
	tx *sqlx.Tx
}

func (t *Tx) Store(name string) (*Store, error) {
	return t.db.bindStore(name, t.tx)
}

type Store struct {
	cfg schema.StoreConfig
	q   querier
	db  *DB
}

func (s *Store) Name() string {
	return s.cfg.Name
}

// Add inserts value and fails with ErrConstraint when its key already exists.
func (s *Store) Add(ctx context.Context, value any) error {
	return s.write(ctx, "add", value, "")
}

// Put inserts value or replaces the record with the same key.
func (s *Store) Put(ctx context.Context, value any) error {
	return s.write(ctx, "put", value, "ON CONFLICT("+keyColumn+") DO UPDATE SET "+docColumn+" = excluded."+docColumn)
}

func (s *Store) write(ctx context.Context, op string, value any, suffix string) error {
	if err := s.db.ensureOpen(); err != nil {
		return err
	}

	doc, err := encodeDocument(value)
	if err != nil {
		return err
	}

	// The WHERE clause keeps SQLite from reading ON CONFLICT as a join
	// constraint of the SELECT.
	query, args, err := qb.InsertInto(qb.Ident(s.cfg.Name)).
		Columns(keyColumn, docColumn).
		FromSelect("SELECT "+keyExpr(s.cfg.KeyPath, "v")+", v FROM (SELECT json(?) AS v) WHERE true", doc).
		Suffix(suffix).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build %s %s query: %w", op, s.cfg.Name, err)
	}

	if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
		if isConstraintViolation(err) {
			return &ConstraintError{Store: s.cfg.Name, Err: err}
		}
		return fmt.Errorf("%s %s record: %w", op, s.cfg.Name, err)
	}
	return nil
}

// Get decodes the record stored under key into dest. Composite keys are
// passed as a []any in key path order.
func (s *Store) Get(ctx context.Context, key any, dest any) error {
	if err := s.db.ensureOpen(); err != nil {
		return err
	}

	cond, err := s.keyCondition(key)
	if err != nil {
		return err
	}
	query, args, err := qb.Select(docColumn).From(qb.Ident(s.cfg.Name)).Where(cond).Limit(1).ToSQL()
	if err != nil {
		return fmt.Errorf("build get %s query: %w", s.cfg.Name, err)
	}

	var doc string
	if err := s.q.GetContext(ctx, &doc, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return crerr.Wrapf(ErrNotFound, "%s key %v", s.cfg.Name, key)
		}
		return fmt.Errorf("get %s record: %w", s.cfg.Name, err)
	}
	return decodeDocument(doc, dest)
}

// GetAll decodes every record in insertion order into dest, a pointer to a
// slice.
func (s *Store) GetAll(ctx context.Context, dest any) error {
	return s.selectInto(ctx, dest, qb.Select(docColumn).From(qb.Ident(s.cfg.Name)).OrderBy("rowid"))
}

// Delete removes the record stored under key. Deleting a missing key is not
// an error.
func (s *Store) Delete(ctx context.Context, key any) error {
	if err := s.db.ensureOpen(); err != nil {
		return err
	}

	cond, err := s.keyCondition(key)
	if err != nil {
		return err
	}
	query, args, err := qb.DeleteFrom(qb.Ident(s.cfg.Name)).Where(cond).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete %s query: %w", s.cfg.Name, err)
	}
	if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s record: %w", s.cfg.Name, err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.db.ensureOpen(); err != nil {
		return 0, err
	}

	query, args, err := qb.Select("COUNT(*)").From(qb.Ident(s.cfg.Name)).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count %s query: %w", s.cfg.Name, err)
	}
	var count int
	if err := s.q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count %s records: %w", s.cfg.Name, err)
	}
	return count, nil
}

func (s *Store) Index(name string) (*Index, error) {
	cfg, ok := s.cfg.Index(name)
	if !ok {
		return nil, crerr.Wrapf(ErrUnknownIndex, "store %s index %q", s.cfg.Name, name)
	}
	return &Index{store: s, cfg: cfg}, nil
}

func (s *Store) keyCondition(key any) (qb.Condition, error) {
	if !s.cfg.KeyPath.IsComposite() {
		return qb.Eq(keyColumn, normalizeKey(key)), nil
	}

	parts, ok := key.([]any)
	if !ok || len(parts) != len(s.cfg.KeyPath) {
		return nil, fmt.Errorf("store %s expects a composite key of %d values", s.cfg.Name, len(s.cfg.KeyPath))
	}
	args := make([]any, 0, len(parts))
	placeholders := make([]string, 0, len(parts))
	for _, part := range parts {
		args = append(args, normalizeKey(part))
		placeholders = append(placeholders, "?")
	}
	return qb.Expr(keyColumn+" = json_array("+strings.Join(placeholders, ", ")+")", args...), nil
}

func (s *Store) selectInto(ctx context.Context, dest any, builder *qb.SelectBuilder) error {
	if err := s.db.ensureOpen(); err != nil {
		return err
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build select %s query: %w", s.cfg.Name, err)
	}

	var docs []string
	if err := s.q.SelectContext(ctx, &docs, query, args...); err != nil {
		return fmt.Errorf("select %s records: %w", s.cfg.Name, err)
	}
	return decodeDocuments(docs, dest)
}
