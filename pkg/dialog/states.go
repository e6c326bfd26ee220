package dialog

import "fmt"

// State labels every point the conversation can rest at between turns.
// The set is closed: unknown labels are rejected at the session-attribute
// boundary instead of propagating silently.
type State string

const (
	StateMenuSelection             State = "MENU_SELECTION"
	StateCreateEventName           State = "CREATE_EVENT_NAME"
	StateCreateEventDate           State = "CREATE_EVENT_DATE"
	StateCreateEventTime           State = "CREATE_EVENT_TIME"
	StateQueryCriteria             State = "QUERY_CRITERIA"
	StateQueryNameValue            State = "QUERY_NAME_VALUE"
	StateQueryDateValue            State = "QUERY_DATE_VALUE"
	StateAskingFullDescription     State = "ASKING_FULL_DESCRIPTION"
	StateAwaitingEventName         State = "AWAITING_EVENT_NAME"
	StateModifyEventName           State = "MODIFY_EVENT_NAME"
	StateModifyEventField          State = "MODIFY_EVENT_FIELD"
	StateModifyNewValue            State = "MODIFY_NEW_VALUE"
	StateCancelEventName           State = "CANCEL_EVENT_NAME"
	StateAwaitingRetryConfirmation State = "AWAITING_RETRY_CONFIRMATION"
)

var validStates = map[State]struct{}{
	StateMenuSelection:             {},
	StateCreateEventName:           {},
	StateCreateEventDate:           {},
	StateCreateEventTime:           {},
	StateQueryCriteria:             {},
	StateQueryNameValue:            {},
	StateQueryDateValue:            {},
	StateAskingFullDescription:     {},
	StateAwaitingEventName:         {},
	StateModifyEventName:           {},
	StateModifyEventField:          {},
	StateModifyNewValue:            {},
	StateCancelEventName:           {},
	StateAwaitingRetryConfirmation: {},
}

// Valid reports whether s is a member of the closed state set.
func (s State) Valid() bool {
	_, ok := validStates[s]
	return ok
}

// ParseState converts a stored label back into a State, rejecting unknowns.
func ParseState(label string) (State, error) {
	s := State(label)
	if !s.Valid() {
		return "", fmt.Errorf("dialog: unknown state %q", label)
	}
	return s, nil
}
