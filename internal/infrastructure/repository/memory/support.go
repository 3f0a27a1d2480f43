package memory

import (
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
)

// now matches the millisecond precision of the persistent repositories so
// both drivers hand out identical timestamps.
func now(clock clockwork.Clock) time.Time {
	return clock.Now().UTC().Truncate(time.Millisecond)
}

func bumpedAt(clock clockwork.Clock, previous time.Time) time.Time {
	current := now(clock)
	if current.Before(previous) {
		return previous
	}
	return current
}

func errDuplicateID(entity, id string) error {
	return crerr.Newf("%s with id %s already exists", entity, id)
}
