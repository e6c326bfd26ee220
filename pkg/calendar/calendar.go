// Package calendar defines the capability interface the dialog machine uses
// for all calendar side effects, plus the normalized outcome vocabulary
// providers must map their failures into.
package calendar

import (
	"context"
	"errors"
	"time"
)

// DefaultEventDuration is assumed when the user gives no end time.
const DefaultEventDuration = time.Hour

// Sentinel outcomes. These two errors (checked with errors.Is) are the only
// failure vocabulary the dialog machine recognizes; "not found" is modeled as
// a nil return, never as an error.
var (
	// ErrAuthRequired means no usable access token could be produced for the
	// user. Surfaced to the user with a re-link instruction, never retried.
	ErrAuthRequired = errors.New("calendar: account link required")

	// ErrAPI covers any other provider failure, including timeouts. The
	// gateway does not retry; retry policy belongs to the dialog machine.
	ErrAPI = errors.New("calendar: provider request failed")
)

// Event is a read-only, possibly stale snapshot of a provider event. The
// dialog machine keeps copies inside session attributes for the duration of
// one sub-flow only.
type Event struct {
	ID      string    `json:"id"`
	Subject string    `json:"subject"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Body    string    `json:"body,omitempty"`
}

// Fields is a partial event update. Nil members are left untouched.
type Fields struct {
	Subject *string
	Start   *time.Time
	End     *time.Time
}

// Gateway is implemented against Outlook Graph or Google Calendar; the dialog
// machine is agnostic to which.
type Gateway interface {
	// EnsureAccess resolves an access token for the user, refreshing through
	// the stored refresh token when needed. Returns ErrAuthRequired when no
	// valid token can be produced.
	EnsureAccess(ctx context.Context, userID string) error

	// CreateEvent creates a one-hour event starting at start.
	CreateEvent(ctx context.Context, userID, name string, start time.Time) (*Event, error)

	// EventsByDate returns events starting within [day 00:00:00, day 23:59:59)
	// local time, ordered by start time ascending. An empty slice is a normal
	// outcome, not an error.
	EventsByDate(ctx context.Context, userID string, day time.Time) ([]Event, error)

	// FindEvent returns the first non-cancelled future event whose subject
	// contains name, or nil when none matches.
	FindEvent(ctx context.Context, userID, name string) (*Event, error)

	// UpdateEvent applies a partial update to the event.
	UpdateEvent(ctx context.Context, userID, eventID string, fields Fields) (*Event, error)

	// DeleteEvent removes the event. Returns false without error when the
	// event no longer exists, so cancelling twice is harmless.
	DeleteEvent(ctx context.Context, userID, eventID string) (bool, error)
}

// DayWindow returns the [00:00:00, 23:59:59) bounds of day in its location.
func DayWindow(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return start, start.Add(24*time.Hour - time.Second)
}
