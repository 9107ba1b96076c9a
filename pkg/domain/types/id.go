package types

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// LogEntryID identifies a service log entry. ULID-based: unique and
// monotonically creation-ordered.
type LogEntryID string

// ActionID identifies a suggested action. ULID-based.
type ActionID string

// MessageID identifies a chat message. UUIDv7-based.
type MessageID string

// ULID generation goes through a single monotonic entropy source so that
// IDs created in the same millisecond still sort in creation order and can
// never collide.
var (
	ulidMutex   sync.Mutex
	ulidEntropy = ulid.Monotonic(rand.Reader, 0)
)

func newULID() string {
	ulidMutex.Lock()
	defer ulidMutex.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// NewLogEntryID generates a new LogEntryID
func NewLogEntryID() LogEntryID {
	return LogEntryID(newULID())
}

// NewActionID generates a new ActionID
func NewActionID() ActionID {
	return ActionID(newULID())
}

// NewMessageID generates a new MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.Must(uuid.NewV7()).String())
}

func (x LogEntryID) String() string { return string(x) }
func (x ActionID) String() string   { return string(x) }
func (x MessageID) String() string  { return string(x) }
