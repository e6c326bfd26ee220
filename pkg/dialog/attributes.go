package dialog

import "github.com/agendavoz/agendavoz/pkg/calendar"

// PendingAction tags the flow awaiting a retry confirmation.
type PendingAction string

const (
	ActionCreate PendingAction = "CREATE"
	ActionModify PendingAction = "MODIFY"
	ActionCancel PendingAction = "CANCEL"
)

// EventSnapshot is the pre-modification copy of the target event kept while
// a modify flow is in progress: subject, the date portion and the hour
// portion of its start time.
type EventSnapshot struct {
	Name string `json:"name"`
	Date string `json:"date"`
	Hour string `json:"hour"`
}

// Attributes is the per-conversation state bag. It is a structured record
// rather than an open map so that missing or misspelled fields are caught at
// compile time. Exactly one State is active at any moment; fields belonging
// to a finished flow are cleared before returning to MENU_SELECTION.
type Attributes struct {
	State State `json:"dialog_state"`

	// Create flow accumulation.
	EventName string `json:"event_name,omitempty"`
	EventDate string `json:"event_date,omitempty"`

	// Modify/cancel flow targets.
	TargetEventID   string         `json:"target_event_id,omitempty"`
	TargetEventName string         `json:"target_event_name,omitempty"`
	OldData         *EventSnapshot `json:"old_data,omitempty"`
	ModifyField     string         `json:"modify_field,omitempty"`

	// Set only while awaiting a retry confirmation; cleared on consumption.
	LastAction PendingAction `json:"last_action,omitempty"`

	// Populated after a daily listing, consulted by the describe sub-flow.
	DailyEvents []calendar.Event `json:"daily_events,omitempty"`
}

// DefaultAttributes is the attribute set of a session that has no stored
// state yet. A missing session is not an error.
func DefaultAttributes() Attributes {
	return Attributes{State: StateMenuSelection}
}

// Clone returns a deep copy so one turn's mutations never leak into a
// snapshot another component still holds.
func (a Attributes) Clone() Attributes {
	cp := a
	if a.OldData != nil {
		od := *a.OldData
		cp.OldData = &od
	}
	if a.DailyEvents != nil {
		cp.DailyEvents = make([]calendar.Event, len(a.DailyEvents))
		copy(cp.DailyEvents, a.DailyEvents)
	}
	return cp
}
