package objectstore

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN("/tmp/db.sqlite", 2*time.Second)
	path, rawQuery, ok := strings.Cut(dsn, "?")
	if !ok || path != "/tmp/db.sqlite" {
		t.Fatalf("unexpected dsn: %s", dsn)
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		t.Fatalf("parse dsn query: %v", err)
	}
	pragmas := strings.Join(query["_pragma"], ";")
	for _, want := range []string{"busy_timeout(2000)", "foreign_keys(1)", "journal_mode(WAL)"} {
		if !strings.Contains(pragmas, want) {
			t.Fatalf("expected pragma %s in %s", want, pragmas)
		}
	}
	if query.Get("_txlock") != "immediate" {
		t.Fatalf("expected immediate transactions, got %q", query.Get("_txlock"))
	}
}

func TestBuildDSN_MemoryDefaults(t *testing.T) {
	dsn := buildDSN(memoryPath, 0)
	if strings.Contains(dsn, "journal_mode") {
		t.Fatalf("memory databases must not request WAL: %s", dsn)
	}
	if !strings.Contains(dsn, url.QueryEscape("busy_timeout(5000)")) {
		t.Fatalf("expected default busy timeout: %s", dsn)
	}
}

func TestFormatQueryForTrace(t *testing.T) {
	got := formatQueryForTrace("  SELECT doc\n\tFROM   \"teams\"  ")
	if got != `SELECT doc FROM "teams"` {
		t.Fatalf("unexpected formatted query: %q", got)
	}

	long := formatQueryForTrace(strings.Repeat("x", maxTracedQueryLength+10))
	if len(long) != maxTracedQueryLength+3 || !strings.HasSuffix(long, "...") {
		t.Fatalf("expected truncated query, got len=%d", len(long))
	}
}
