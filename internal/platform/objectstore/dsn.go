package objectstore

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	driverName           = "sqlite"
	memoryPath           = ":memory:"
	defaultBusyTimeout   = 5 * time.Second
	maxTracedQueryLength = 512
)

var queryWhitespaceRegex = regexp.MustCompile(`\s+`)

func isMemoryPath(path string) bool {
	return path == memoryPath
}

// buildDSN appends the connection pragmas understood by modernc.org/sqlite.
// Writers take the lock at BEGIN so two processes never deadlock on upgrade.
func buildDSN(path string, busyTimeout time.Duration) string {
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}

	query := url.Values{}
	query.Add("_pragma", "busy_timeout("+strconv.FormatInt(busyTimeout.Milliseconds(), 10)+")")
	query.Add("_pragma", "foreign_keys(1)")
	if !isMemoryPath(path) {
		query.Add("_pragma", "journal_mode(WAL)")
		query.Add("_pragma", "synchronous(NORMAL)")
	}
	query.Set("_txlock", "immediate")

	return path + "?" + query.Encode()
}

// sideFiles lists the files SQLite keeps next to the database in WAL or
// rollback-journal mode.
func sideFiles(path string) []string {
	clean := filepath.Clean(path)
	return []string{clean, clean + "-wal", clean + "-shm", clean + "-journal"}
}

func formatQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}
