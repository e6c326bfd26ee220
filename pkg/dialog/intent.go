package dialog

import "strings"

// Intent names as delivered by the front-ends. These mirror the skill
// interaction model; the machine never sees raw user text.
const (
	IntentLaunch          = "LaunchRequest"
	IntentMenuSelection   = "MenuSelectionIntent"
	IntentCreateEvent     = "CreateEventIntent"
	IntentSpecifyDate     = "SpecifyDateIntent"
	IntentSpecifyTime     = "SpecifyTimeIntent"
	IntentReadDailyEvents = "ReadDailyEventsIntent"
	IntentSearchCriteria  = "SearchCriteriaIntent"
	IntentModifyStart     = "ModifyStartIntent"
	IntentSelectField     = "SelectFieldIntent"
	IntentCancelEvent     = "CancelEventIntent"
	IntentConfirmOrDeny   = "ConfirmOrDenyIntent"
	IntentHelp            = "AMAZON.HelpIntent"
	IntentStop            = "AMAZON.StopIntent"
	IntentCancel          = "AMAZON.CancelIntent"
	IntentFallback        = "AMAZON.FallbackIntent"
)

// Slot names per intent.
const (
	SlotOptionType    = "OptionType"
	SlotEventName     = "EventName"
	SlotEventDate     = "EventDate"
	SlotEventTime     = "EventTime"
	SlotCriteria      = "Criteria"
	SlotOldEventName  = "OldEventName"
	SlotFieldName     = "FieldName"
	SlotEventToCancel = "EventToCancel"
	SlotConfirmation  = "Confirmation"
)

// Confirmation slot values.
const (
	ConfirmYes = "si"
	ConfirmNo  = "no"
)

// Modifiable field slot values.
const (
	FieldName = "nombre"
	FieldDate = "fecha"
	FieldTime = "horario"
)

// Intent is one recognized user turn: a classified request type plus the
// slot values the recognizer extracted from it.
type Intent struct {
	Name  string
	Slots map[string]string
}

// NewIntent builds an intent with no slots.
func NewIntent(name string) Intent {
	return Intent{Name: name}
}

// Slot returns the trimmed slot value, or "" when absent.
func (in Intent) Slot(name string) string {
	return strings.TrimSpace(in.Slots[name])
}

// Is reports whether the intent carries the given name.
func (in Intent) Is(name string) bool { return in.Name == name }

// Menu option phrases, matched verbatim against the OptionType slot.
var menuOptions = map[string]State{
	"crear un evento":                    StateCreateEventName,
	"programar un evento":                StateCreateEventName,
	"consultar un recordatorio específico": StateQueryCriteria,
	"modificar un evento":                StateModifyEventName,
	"cancelar un evento":                 StateCancelEventName,
}

// MenuOptionDailyEvents triggers the daily-listing flow straight from the
// menu rather than moving to an intermediate state.
const MenuOptionDailyEvents = "escuchar los recordatorios del día"
