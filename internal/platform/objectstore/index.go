package objectstore

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	qb "github.com/riskibarqy/match-manager/internal/platform/querybuilder"
	"github.com/riskibarqy/match-manager/internal/platform/schema"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

type Index struct {
	store *Store
	cfg   schema.IndexConfig
}

func (i *Index) Name() string {
	return i.cfg.Name
}

// Get decodes the first record, in insertion order, whose indexed value
// equals values. Composite indexes take one value per key path field.
func (i *Index) Get(ctx context.Context, dest any, values ...any) error {
	var docs []string
	if err := i.selectDocs(ctx, &docs, 1, values); err != nil {
		return err
	}
	if len(docs) == 0 {
		return crerr.Wrapf(ErrNotFound, "%s index %s value %v", i.store.cfg.Name, i.cfg.Name, values)
	}
	return decodeDocument(docs[0], dest)
}

// GetAll decodes every matching record in insertion order into dest, a
// pointer to a slice.
func (i *Index) GetAll(ctx context.Context, dest any, values ...any) error {
	var docs []string
	if err := i.selectDocs(ctx, &docs, 0, values); err != nil {
		return err
	}
	return decodeDocuments(docs, dest)
}

// Cursor walks the whole store in index order and decodes up to limit records
// into dest. A non-positive limit reads every record. Ties keep insertion
// order in the walk direction.
func (i *Index) Cursor(ctx context.Context, dest any, direction Direction, limit int) error {
	if i.cfg.MultiEntry {
		return fmt.Errorf("store %s index %s: cursors over multi-entry indexes are not supported", i.store.cfg.Name, i.cfg.Name)
	}

	dir := "ASC"
	if direction == Descending {
		dir = "DESC"
	}
	orderBy := make([]string, 0, len(i.cfg.KeyPath)+1)
	for _, field := range i.cfg.KeyPath {
		orderBy = append(orderBy, fieldExpr(docColumn, field)+" "+dir)
	}
	orderBy = append(orderBy, "rowid "+dir)

	return i.store.selectInto(ctx, dest,
		qb.Select(docColumn).From(qb.Ident(i.store.cfg.Name)).OrderBy(orderBy...).Limit(limit),
	)
}

func (i *Index) selectDocs(ctx context.Context, docs *[]string, limit int, values []any) error {
	if err := i.store.db.ensureOpen(); err != nil {
		return err
	}

	conds, err := i.conditions(values)
	if err != nil {
		return err
	}
	query, args, err := qb.Select(docColumn).
		From(qb.Ident(i.store.cfg.Name)).
		Where(conds...).
		OrderBy("rowid").
		Limit(limit).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build %s index %s query: %w", i.store.cfg.Name, i.cfg.Name, err)
	}

	if err := i.store.q.SelectContext(ctx, docs, query, args...); err != nil {
		return fmt.Errorf("query %s index %s: %w", i.store.cfg.Name, i.cfg.Name, err)
	}
	return nil
}

func (i *Index) conditions(values []any) ([]qb.Condition, error) {
	if len(values) != len(i.cfg.KeyPath) {
		return nil, fmt.Errorf("store %s index %s expects %d values, got %d",
			i.store.cfg.Name, i.cfg.Name, len(i.cfg.KeyPath), len(values))
	}

	if i.cfg.MultiEntry {
		side := qb.Ident(indexName(i.store.cfg.Name, i.cfg.Name))
		return []qb.Condition{
			qb.Expr(keyColumn+" IN (SELECT "+keyColumn+" FROM "+side+" WHERE value = ?)", normalizeKey(values[0])),
		}, nil
	}

	conds := make([]qb.Condition, 0, len(values))
	for idx, field := range i.cfg.KeyPath {
		conds = append(conds, qb.Eq(fieldExpr(docColumn, field), normalizeKey(values[idx])))
	}
	return conds, nil
}
