package dialog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agendavoz/agendavoz/pkg/calendar"
)

// Response is the directive handed back to the front-end for rendering: an
// utterance, an optional "keep listening" reprompt, an optional link-account
// signal and an optional end-of-session signal.
type Response struct {
	Speak       string
	Reprompt    string
	LinkAccount bool
	EndSession  bool
}

// PromptSource supplies the current prompt catalog; a Loader satisfies it.
type PromptSource interface {
	Catalog() *Catalog
}

type staticPrompts struct{ c *Catalog }

func (s staticPrompts) Catalog() *Catalog { return s.c }

// Machine is the dialog state machine. Given the session attributes and a
// recognized intent it decides whether the transition is legal, runs the
// calendar side effect, and computes the next attributes and response.
//
// A transition is legal only when the intent name matches the handler's
// expected intent AND the session is in the state the handler is declared
// for; anything else falls through to a catch-all that re-prompts the current
// state's question without changing state.
type Machine struct {
	gw       calendar.Gateway
	prompts  PromptSource
	now      func() time.Time
	loc      *time.Location
	handlers []handler
}

type handler struct {
	name  string
	match func(a Attributes, in Intent) bool
	run   func(ctx context.Context, userID string, a Attributes, in Intent) (Attributes, Response)
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock overrides the machine's notion of "today". Used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithLocation sets the timezone event dates and times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(m *Machine) { m.loc = loc }
}

// WithPrompts sets the prompt catalog source.
func WithPrompts(p PromptSource) Option {
	return func(m *Machine) { m.prompts = p }
}

// NewMachine creates a dialog machine over the given calendar gateway.
func NewMachine(gw calendar.Gateway, opts ...Option) *Machine {
	m := &Machine{
		gw:      gw,
		prompts: staticPrompts{DefaultCatalog()},
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.handlers = []handler{
		{"launch", m.matchLaunch, m.handleLaunch},
		{"menu_selection", m.matchMenu, m.handleMenu},
		{"create_name", stateIntent(StateCreateEventName, IntentCreateEvent, SlotEventName), m.handleCreateName},
		{"create_date", stateIntent(StateCreateEventDate, IntentSpecifyDate, SlotEventDate), m.handleCreateDate},
		{"create_time", stateIntent(StateCreateEventTime, IntentSpecifyTime, SlotEventTime), m.handleCreateTime},
		{"read_daily", stateIntent(StateMenuSelection, IntentReadDailyEvents, ""), m.handleReadDaily},
		{"describe", m.matchDescribe, m.handleDescribe},
		{"describe_name", stateIntent(StateAwaitingEventName, IntentCreateEvent, SlotEventName), m.handleDescribeName},
		{"search_criteria", stateIntent(StateQueryCriteria, IntentSearchCriteria, SlotCriteria), m.handleSearchCriteria},
		{"query_name", stateIntent(StateQueryNameValue, IntentCreateEvent, SlotEventName), m.handleQueryName},
		{"query_date", stateIntent(StateQueryDateValue, IntentSpecifyDate, SlotEventDate), m.handleQueryDate},
		{"modify_start", stateIntent(StateModifyEventName, IntentModifyStart, SlotOldEventName), m.handleModifyStart},
		{"select_field", stateIntent(StateModifyEventField, IntentSelectField, SlotFieldName), m.handleSelectField},
		{"modify_new_value", m.matchModifyNewValue, m.handleModifyNewValue},
		{"cancel_start", stateIntent(StateCancelEventName, IntentCancelEvent, SlotEventToCancel), m.handleCancelStart},
		{"retry_confirmation", stateIntent(StateAwaitingRetryConfirmation, IntentConfirmOrDeny, SlotConfirmation), m.handleRetryConfirmation},
		{"help", m.matchHelp, m.handleHelp},
		{"stop", m.matchStop, m.handleStop},
		{"fallback", m.matchFallback, m.handleFallback},
	}
	return m
}

// stateIntent builds the usual guard: intent name matches, session state
// matches, and the named slot (when given) is non-empty.
func stateIntent(state State, intent, slot string) func(Attributes, Intent) bool {
	return func(a Attributes, in Intent) bool {
		if a.State != state || !in.Is(intent) {
			return false
		}
		return slot == "" || in.Slot(slot) != ""
	}
}

// Transition dispatches one turn. Attributes with an unknown state label are
// reset to the default set rather than propagated.
func (m *Machine) Transition(ctx context.Context, userID string, a Attributes, in Intent) (Attributes, Response) {
	if !a.State.Valid() {
		a = DefaultAttributes()
	}
	for _, h := range m.handlers {
		if h.match(a, in) {
			return h.run(ctx, userID, a.Clone(), in)
		}
	}
	return a, m.unexpected(a)
}

// unexpected re-prompts the current state's question without changing state.
func (m *Machine) unexpected(a Attributes) Response {
	p := m.prompts.Catalog()
	q := m.stateQuestion(a)
	return Response{Speak: p.UnexpectedInput + " " + q, Reprompt: q}
}

// stateQuestion returns the question the current state is waiting on.
func (m *Machine) stateQuestion(a Attributes) string {
	p := m.prompts.Catalog()
	switch a.State {
	case StateCreateEventName:
		return p.AskEventName
	case StateCreateEventDate:
		return p.askEventDate(a.EventName)
	case StateCreateEventTime:
		return p.askEventTime(a.EventDate)
	case StateQueryCriteria:
		return p.AskQueryCriteria
	case StateQueryNameValue:
		return p.AskQueryName
	case StateQueryDateValue:
		return p.AskQueryDate
	case StateAskingFullDescription:
		return p.AskFullDescription
	case StateAwaitingEventName:
		return p.AskEventToDescribe
	case StateModifyEventName:
		return p.AskModifyName
	case StateModifyEventField:
		return p.askModifyField(a.TargetEventName)
	case StateModifyNewValue:
		return p.AskNewValue
	case StateCancelEventName:
		return p.AskCancelName
	case StateAwaitingRetryConfirmation:
		return p.eventNotFoundRetry(a.TargetEventName)
	default:
		return p.RepromptMenu
	}
}

// authRequired surfaces the re-link instruction. Attributes are returned
// untouched on purpose: the user can link the account and resume the flow
// where it stopped.
func (m *Machine) authRequired(a Attributes) (Attributes, Response) {
	p := m.prompts.Catalog()
	return a, Response{Speak: p.AuthRequired, LinkAccount: true}
}

// apiFailure abandons the current sub-flow and returns the user to the menu.
func (m *Machine) apiFailure() (Attributes, Response) {
	p := m.prompts.Catalog()
	return DefaultAttributes(), Response{Speak: p.APIError, Reprompt: p.RepromptMenu}
}

func (m *Machine) backToMenu(speak string) (Attributes, Response) {
	p := m.prompts.Catalog()
	if speak != "" {
		speak += " "
	}
	return DefaultAttributes(), Response{
		Speak:    speak + p.PromptFinalMenu,
		Reprompt: p.RepromptMenu,
	}
}

// --- Launch ---

func (m *Machine) matchLaunch(_ Attributes, in Intent) bool { return in.Is(IntentLaunch) }

func (m *Machine) handleLaunch(ctx context.Context, userID string, a Attributes, _ Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	if err := m.gw.EnsureAccess(ctx, userID); err != nil {
		if errors.Is(err, calendar.ErrAuthRequired) {
			return m.authRequired(a)
		}
		return m.apiFailure()
	}
	return DefaultAttributes(), Response{Speak: p.Welcome, Reprompt: p.RepromptMenu}
}

// --- Menu dispatch ---

func (m *Machine) matchMenu(a Attributes, in Intent) bool {
	return a.State == StateMenuSelection && in.Is(IntentMenuSelection) && in.Slot(SlotOptionType) != ""
}

func (m *Machine) handleMenu(ctx context.Context, userID string, _ Attributes, in Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	option := strings.ToLower(in.Slot(SlotOptionType))

	// Temporary attributes from any earlier flow are dropped before a new
	// flow starts.
	a := DefaultAttributes()

	if option == MenuOptionDailyEvents {
		return m.readDaily(ctx, userID, a)
	}

	target, ok := menuOptions[option]
	if !ok {
		return a, Response{Speak: p.UnexpectedInput, Reprompt: p.RepromptMenu}
	}

	a.State = target
	q := m.stateQuestion(a)
	return a, Response{Speak: q, Reprompt: q}
}

// --- Create flow ---

func (m *Machine) handleCreateName(_ context.Context, _ string, a Attributes, in Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	a.EventName = in.Slot(SlotEventName)
	a.State = StateCreateEventDate
	q := p.askEventDate(a.EventName)
	return a, Response{Speak: q, Reprompt: q}
}

func (m *Machine) handleCreateDate(_ context.Context, _ string, a Attributes, in Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	a.EventDate = in.Slot(SlotEventDate)
	a.State = StateCreateEventTime
	q := p.askEventTime(a.EventDate)
	return a, Response{Speak: q, Reprompt: q}
}

func (m *Machine) handleCreateTime(ctx context.Context, userID string, a Attributes, in Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	eventTime := in.Slot(SlotEventTime)

	start, err := m.parseStart(a.EventDate, eventTime)
	if err != nil {
		q := p.askEventTime(a.EventDate)
		return a, Response{Speak: p.UnexpectedInput + " " + q, Reprompt: q}
	}

	if _, err := m.gw.CreateEvent(ctx, userID, a.EventName, start); err != nil {
		if errors.Is(err, calendar.ErrAuthRequired) {
			return m.authRequired(a)
		}
		return m.apiFailure()
	}

	return m.backToMenu(p.createConfirmed(a.EventName, a.EventDate, eventTime))
}

// --- Daily listing flow ---

func (m *Machine) handleReadDaily(ctx context.Context, userID string, _ Attributes, _ Intent) (Attributes, Response) {
	return m.readDaily(ctx, userID, DefaultAttributes())
}

// readDaily is shared between the ReadDailyEventsIntent handler and the menu
// option that triggers the listing directly.
func (m *Machine) readDaily(ctx context.Context, userID string, a Attributes) (Attributes, Response) {
	p := m.prompts.Catalog()

	events, err := m.gw.EventsByDate(ctx, userID, m.now().In(m.loc))
	if err != nil {
		if errors.Is(err, calendar.ErrAuthRequired) {
			return m.authRequired(a)
		}
		return m.apiFailure()
	}

	if len(events) == 0 {
		return m.backToMenu(p.NoEventsToday)
	}

	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Subject)
	}

	a.DailyEvents = events
	a.State = StateAskingFullDescription
	return a, Response{
		Speak:    p.dailyList(strings.Join(names, ", ")) + " " + p.AskFullDescription,
		Reprompt: p.AskFullDescription,
	}
}

// --- Describe-event sub-flow ---

func (m *Machine) matchDescribe(a Attributes, in Intent) bool {
	if a.State != StateAskingFullDescription {
		return false
	}
	if in.Is(IntentConfirmOrDeny) {
		return true
	}
	return in.Is(IntentCreateEvent) && in.Slot(SlotEventName) != ""
}

func (m *Machine) handleDescribe(_ context.Context, _ string, a Attributes, in Intent) (Attributes, Response) {
	p := m.prompts.Catalog()

	if in.Is(IntentConfirmOrDeny) {
		if in.Slot(SlotConfirmation) == ConfirmNo {
			return m.backToMenu("")
		}
		a.State = StateAwaitingEventName
		return a, Response{Speak: p.AskEventToDescribe, Reprompt: p.AskEventToDescribe}
	}

	// The user skipped the yes and gave the name outright, reusing the
	// create intent's name slot.
	return m.describeFromDaily(a, in.Slot(SlotEventName))
}

func (m *Machine) handleDescribeName(_ context.Context, _ string, a Attributes, in Intent) (Attributes, Response) {
	return m.describeFromDaily(a, in.Slot(SlotEventName))
}

// describeFromDaily matches the name case-insensitively against the stored
// daily snapshot and loops back to ASKING_FULL_DESCRIPTION either way.
func (m *Machine) describeFromDaily(a Attributes, name string) (Attributes, Response) {
	p := m.prompts.Catalog()

	var found *calendar.Event
	for i := range a.DailyEvents {
		if strings.EqualFold(a.DailyEvents[i].Subject, name) {
			found = &a.DailyEvents[i]
			break
		}
	}

	speak := p.describeNotFound(name)
	if found != nil {
		start := found.Start.In(m.loc)
		speak = p.describeEvent(found.Subject,
			start.Format("2006-01-02"), start.Format("15"), start.Format("04"))
	}

	a.State = StateAskingFullDescription
	return a, Response{Speak: speak, Reprompt: p.AskFullDescription}
}

// --- Query flow ---

func (m *Machine) handleSearchCriteria(_ context.Context, _ string, a Attributes, in Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	criteria := strings.ToLower(in.Slot(SlotCriteria))

	switch {
	case strings.Contains(criteria, FieldName):
		a.State = StateQueryNameValue
		return a, Response{Speak: p.AskQueryName, Reprompt: p.AskQueryName}
	case strings.Contains(criteria, FieldDate):
		a.State = StateQueryDateValue
		return a, Response{Speak: p.AskQueryDate, Reprompt: p.AskQueryDate}
	default:
		return a, Response{Speak: p.UnexpectedInput + " " + p.AskQueryCriteria, Reprompt: p.AskQueryCriteria}
	}
}

func (m *Machine) handleQueryName(ctx context.Context, userID string, a Attributes, in Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	name := in.Slot(SlotEventName)

	ev, err := m.gw.FindEvent(ctx, userID, name)
	if err != nil {
		if errors.Is(err, calendar.ErrAuthRequired) {
			return m.authRequired(a)
		}
		return m.apiFailure()
	}
	if ev == nil {
		return m.backToMenu(p.queryNotFound(name))
	}

	start := ev.Start.In(m.loc)
	return m.backToMenu(p.queryResult(ev.Subject, start.Format("2006-01-02"), start.Format("15:04")))
}

func (m *Machine) handleQueryDate(ctx context.Context, userID string, a Attributes, in Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	date := in.Slot(SlotEventDate)

	day, err := time.ParseInLocation("2006-01-02", date, m.loc)
	if err != nil {
		return a, Response{Speak: p.UnexpectedInput + " " + p.AskQueryDate, Reprompt: p.AskQueryDate}
	}

	events, err := m.gw.EventsByDate(ctx, userID, day)
	if err != nil {
		if errors.Is(err, calendar.ErrAuthRequired) {
			return m.authRequired(a)
		}
		return m.apiFailure()
	}

	if len(events) == 0 {
		return m.backToMenu(p.queryDateEmpty(date))
	}

	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Subject)
	}
	return m.backToMenu(p.queryDateList(date, strings.Join(names, ", ")))
}

// --- Modify flow ---

func (m *Machine) handleModifyStart(ctx context.Context, userID string, a Attributes, in Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	name := in.Slot(SlotOldEventName)

	ev, err := m.gw.FindEvent(ctx, userID, name)
	if err != nil {
		if errors.Is(err, calendar.ErrAuthRequired) {
			return m.authRequired(a)
		}
		return m.apiFailure()
	}
	if ev == nil {
		return m.notFoundRetry(a, name, ActionModify)
	}

	start := ev.Start.In(m.loc)
	a.TargetEventID = ev.ID
	a.TargetEventName = ev.Subject
	a.OldData = &EventSnapshot{
		Name: ev.Subject,
		Date: start.Format("2006-01-02"),
		Hour: start.Format("15:04"),
	}
	a.State = StateModifyEventField
	q := p.askModifyField(ev.Subject)
	return a, Response{Speak: q, Reprompt: q}
}

func (m *Machine) handleSelectField(_ context.Context, _ string, a Attributes, in Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	field := strings.ToLower(in.Slot(SlotFieldName))

	switch {
	case strings.Contains(field, FieldName):
		a.ModifyField = FieldName
	case strings.Contains(field, FieldDate):
		a.ModifyField = FieldDate
	case strings.Contains(field, FieldTime):
		a.ModifyField = FieldTime
	default:
		q := p.askModifyField(a.TargetEventName)
		return a, Response{Speak: p.UnexpectedInput + " " + q, Reprompt: q}
	}

	a.State = StateModifyNewValue
	return a, Response{Speak: p.AskNewValue, Reprompt: p.AskNewValue}
}

func (m *Machine) matchModifyNewValue(a Attributes, in Intent) bool {
	if a.State != StateModifyNewValue {
		return false
	}
	return in.Is(IntentCreateEvent) || in.Is(IntentSpecifyDate) || in.Is(IntentSpecifyTime)
}

func (m *Machine) handleModifyNewValue(ctx context.Context, userID string, a Attributes, in Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	if a.OldData == nil {
		return m.apiFailure()
	}

	var fields calendar.Fields
	switch {
	case a.ModifyField == FieldName && in.Is(IntentCreateEvent) && in.Slot(SlotEventName) != "":
		subject := in.Slot(SlotEventName)
		fields.Subject = &subject

	case a.ModifyField == FieldDate && in.Is(IntentSpecifyDate) && in.Slot(SlotEventDate) != "":
		start, err := m.parseStart(in.Slot(SlotEventDate), a.OldData.Hour)
		if err != nil {
			return a, Response{Speak: p.UnexpectedInput + " " + p.AskNewValue, Reprompt: p.AskNewValue}
		}
		end := start.Add(calendar.DefaultEventDuration)
		fields.Start, fields.End = &start, &end

	case a.ModifyField == FieldTime && in.Is(IntentSpecifyTime) && in.Slot(SlotEventTime) != "":
		start, err := m.parseStart(a.OldData.Date, in.Slot(SlotEventTime))
		if err != nil {
			return a, Response{Speak: p.UnexpectedInput + " " + p.AskNewValue, Reprompt: p.AskNewValue}
		}
		end := start.Add(calendar.DefaultEventDuration)
		fields.Start, fields.End = &start, &end

	default:
		// The new value does not match the field being modified.
		return a, Response{Speak: p.UnexpectedInput + " " + p.AskNewValue, Reprompt: p.AskNewValue}
	}

	if _, err := m.gw.UpdateEvent(ctx, userID, a.TargetEventID, fields); err != nil {
		if errors.Is(err, calendar.ErrAuthRequired) {
			return m.authRequired(a)
		}
		return m.apiFailure()
	}

	return m.backToMenu(p.modifyConfirmed(a.TargetEventName))
}

// --- Cancel flow ---

func (m *Machine) handleCancelStart(ctx context.Context, userID string, a Attributes, in Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	name := in.Slot(SlotEventToCancel)

	ev, err := m.gw.FindEvent(ctx, userID, name)
	if err != nil {
		if errors.Is(err, calendar.ErrAuthRequired) {
			return m.authRequired(a)
		}
		return m.apiFailure()
	}
	if ev == nil {
		return m.notFoundRetry(a, name, ActionCancel)
	}

	deleted, err := m.gw.DeleteEvent(ctx, userID, ev.ID)
	if err != nil {
		if errors.Is(err, calendar.ErrAuthRequired) {
			return m.authRequired(a)
		}
		return m.apiFailure()
	}

	if !deleted {
		return m.backToMenu(p.cancelAlreadyGone(ev.Subject))
	}
	return m.backToMenu(p.cancelConfirmed(ev.Subject))
}

// notFoundRetry routes a missed lookup into the explicit retry-confirmation
// sub-flow. The attempted name is kept so the retry question can repeat it.
func (m *Machine) notFoundRetry(a Attributes, name string, action PendingAction) (Attributes, Response) {
	p := m.prompts.Catalog()
	a.TargetEventName = name
	a.LastAction = action
	a.State = StateAwaitingRetryConfirmation
	q := p.eventNotFoundRetry(name)
	return a, Response{Speak: q, Reprompt: q}
}

// --- Retry confirmation ---

func (m *Machine) handleRetryConfirmation(_ context.Context, _ string, a Attributes, in Intent) (Attributes, Response) {
	p := m.prompts.Catalog()

	// last_action is consumed here no matter how the turn resolves.
	last := a.LastAction
	a = DefaultAttributes()

	if in.Slot(SlotConfirmation) == ConfirmYes {
		switch last {
		case ActionCancel:
			a.State = StateCancelEventName
			return a, Response{Speak: p.AskCancelName, Reprompt: p.AskCancelName}
		case ActionModify:
			a.State = StateModifyEventName
			return a, Response{Speak: p.AskModifyName, Reprompt: p.AskModifyName}
		}
		// No recorded action to retry; fall back to the menu.
	}

	return a, Response{Speak: p.PromptFinalMenu, Reprompt: p.RepromptMenu}
}

// --- Built-ins ---

func (m *Machine) matchHelp(_ Attributes, in Intent) bool { return in.Is(IntentHelp) }

func (m *Machine) handleHelp(_ context.Context, _ string, a Attributes, _ Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	return a, Response{Speak: p.RepromptMenu, Reprompt: m.stateQuestion(a)}
}

func (m *Machine) matchStop(_ Attributes, in Intent) bool {
	return in.Is(IntentStop) || in.Is(IntentCancel)
}

func (m *Machine) handleStop(_ context.Context, _ string, _ Attributes, _ Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	return DefaultAttributes(), Response{Speak: p.Goodbye, EndSession: true}
}

func (m *Machine) matchFallback(_ Attributes, in Intent) bool { return in.Is(IntentFallback) }

func (m *Machine) handleFallback(_ context.Context, _ string, a Attributes, _ Intent) (Attributes, Response) {
	p := m.prompts.Catalog()
	return a, Response{Speak: p.UnexpectedInput + " " + m.stateQuestion(a), Reprompt: m.stateQuestion(a)}
}

// parseStart combines a YYYY-MM-DD date and an HH:MM time in the machine's
// location.
func (m *Machine) parseStart(date, hhmm string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+hhmm, m.loc)
}
