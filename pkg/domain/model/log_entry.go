package model

import (
	"time"

	"github.com/glovebox-dev/glovebox/pkg/domain/types"
)

// LogEntry is one record of the owner's append-only service log.
// Entries are immutable once created and are never deleted; the sequence
// is ordered by insertion, not by date.
type LogEntry struct {
	ID       types.LogEntryID
	Date     time.Time // day precision
	Category types.LogCategory
	Text     string
}

// DateString renders the entry date with day precision (ISO 8601)
func (e *LogEntry) DateString() string {
	return e.Date.Format("2006-01-02")
}
