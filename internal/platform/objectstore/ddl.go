package objectstore

import (
	"fmt"
	"strings"

	qb "github.com/riskibarqy/match-manager/internal/platform/querybuilder"
	"github.com/riskibarqy/match-manager/internal/platform/schema"
)

const (
	keyColumn = "record_key"
	docColumn = "doc"
)

func jsonPath(field string) string {
	return qb.Literal("$." + field)
}

func fieldExpr(source, field string) string {
	return "json_extract(" + source + ", " + jsonPath(field) + ")"
}

// keyExpr derives the record key from a document column or alias. Composite
// key paths are folded into a JSON array.
func keyExpr(path schema.KeyPath, source string) string {
	if !path.IsComposite() {
		return fieldExpr(source, path[0])
	}
	parts := make([]string, 0, len(path))
	for _, field := range path {
		parts = append(parts, fieldExpr(source, field))
	}
	return "json_array(" + strings.Join(parts, ", ") + ")"
}

// indexName names the SQL index of a plain index, or the side table of a
// multi-entry index. The side table holds one (record_key, value) row per
// array element.
func indexName(store, index string) string {
	return store + "__" + index
}

func createStoreStatements(store schema.StoreConfig) []string {
	table := qb.Ident(store.Name)
	stmts := []string{
		fmt.Sprintf("CREATE TABLE %s (%s NOT NULL PRIMARY KEY, %s TEXT NOT NULL)", table, keyColumn, docColumn),
	}

	for _, idx := range store.Indexes {
		if idx.MultiEntry {
			stmts = append(stmts, multiEntryStatements(store.Name, idx)...)
			continue
		}

		columns := make([]string, 0, len(idx.KeyPath))
		for _, field := range idx.KeyPath {
			columns = append(columns, fieldExpr(docColumn, field))
		}
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		stmts = append(stmts, fmt.Sprintf(
			"CREATE %sINDEX %s ON %s (%s)",
			unique,
			qb.Ident(indexName(store.Name, idx.Name)),
			table,
			strings.Join(columns, ", "),
		))
	}

	return stmts
}

func multiEntryStatements(store string, idx schema.IndexConfig) []string {
	table := qb.Ident(store)
	side := qb.Ident(indexName(store, idx.Name))
	path := jsonPath(idx.KeyPath[0])

	fill := fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s, value) SELECT NEW.%s, je.value FROM json_each(NEW.%s, %s) AS je WHERE je.value IS NOT NULL;",
		side, keyColumn, keyColumn, docColumn, path,
	)
	clear := fmt.Sprintf("DELETE FROM %s WHERE %s = OLD.%s;", side, keyColumn, keyColumn)

	return []string{
		fmt.Sprintf("CREATE TABLE %s (%s NOT NULL, value NOT NULL, PRIMARY KEY (%s, value))", side, keyColumn, keyColumn),
		fmt.Sprintf("CREATE INDEX %s ON %s (value)", qb.Ident(indexName(store, idx.Name)+"__value"), side),
		fmt.Sprintf("CREATE TRIGGER %s AFTER INSERT ON %s BEGIN %s END", qb.Ident(indexName(store, idx.Name)+"__ai"), table, fill),
		fmt.Sprintf("CREATE TRIGGER %s AFTER UPDATE OF %s ON %s BEGIN %s %s END", qb.Ident(indexName(store, idx.Name)+"__au"), docColumn, table, clear, fill),
		fmt.Sprintf("CREATE TRIGGER %s AFTER DELETE ON %s BEGIN %s END", qb.Ident(indexName(store, idx.Name)+"__ad"), table, clear),
	}
}
