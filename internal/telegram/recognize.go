// Package telegram exposes the assistant over a Telegram bot. Telegram gives
// us raw text instead of a recognized intent, so a small rule-based
// recognizer classifies each message against the state the dialog is
// currently waiting in.
package telegram

import (
	"regexp"
	"strings"

	"github.com/agendavoz/agendavoz/pkg/dialog"
)

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

var stopWords = map[string]bool{
	"/stop":    true,
	"salir":    true,
	"terminar": true,
	"adios":    true,
	"adiós":    true,
	"chao":     true,
}

var helpWords = map[string]bool{
	"/help": true,
	"ayuda": true,
	"menú":  true,
	"menu":  true,
}

// Recognize classifies one message given the state the session is in. It
// mirrors the skill interaction model: commands win over state-specific
// rules, and free text is bound to whichever slot the current state expects.
func Recognize(state dialog.State, text string) dialog.Intent {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)

	switch {
	case lower == "/start" || lower == "hola":
		return dialog.NewIntent(dialog.IntentLaunch)
	case stopWords[lower]:
		return dialog.NewIntent(dialog.IntentStop)
	case helpWords[lower]:
		return dialog.NewIntent(dialog.IntentHelp)
	case text == "":
		return dialog.NewIntent(dialog.IntentFallback)
	}

	switch state {
	case dialog.StateMenuSelection:
		return slotIntent(dialog.IntentMenuSelection, dialog.SlotOptionType, lower)

	case dialog.StateCreateEventName:
		return slotIntent(dialog.IntentCreateEvent, dialog.SlotEventName, text)

	case dialog.StateCreateEventDate, dialog.StateQueryDateValue:
		if !dateRe.MatchString(lower) {
			return dialog.NewIntent(dialog.IntentFallback)
		}
		return slotIntent(dialog.IntentSpecifyDate, dialog.SlotEventDate, lower)

	case dialog.StateCreateEventTime:
		if !timeRe.MatchString(lower) {
			return dialog.NewIntent(dialog.IntentFallback)
		}
		return slotIntent(dialog.IntentSpecifyTime, dialog.SlotEventTime, padTime(lower))

	case dialog.StateAskingFullDescription:
		if yn, ok := confirmation(lower); ok {
			return slotIntent(dialog.IntentConfirmOrDeny, dialog.SlotConfirmation, yn)
		}
		// A name straight away counts as a yes plus the name.
		return slotIntent(dialog.IntentCreateEvent, dialog.SlotEventName, text)

	case dialog.StateAwaitingEventName:
		return slotIntent(dialog.IntentCreateEvent, dialog.SlotEventName, text)

	case dialog.StateQueryCriteria:
		return slotIntent(dialog.IntentSearchCriteria, dialog.SlotCriteria, lower)

	case dialog.StateQueryNameValue:
		return slotIntent(dialog.IntentCreateEvent, dialog.SlotEventName, text)

	case dialog.StateModifyEventName:
		return slotIntent(dialog.IntentModifyStart, dialog.SlotOldEventName, text)

	case dialog.StateModifyEventField:
		return slotIntent(dialog.IntentSelectField, dialog.SlotFieldName, lower)

	case dialog.StateModifyNewValue:
		switch {
		case dateRe.MatchString(lower):
			return slotIntent(dialog.IntentSpecifyDate, dialog.SlotEventDate, lower)
		case timeRe.MatchString(lower):
			return slotIntent(dialog.IntentSpecifyTime, dialog.SlotEventTime, padTime(lower))
		default:
			return slotIntent(dialog.IntentCreateEvent, dialog.SlotEventName, text)
		}

	case dialog.StateCancelEventName:
		return slotIntent(dialog.IntentCancelEvent, dialog.SlotEventToCancel, text)

	case dialog.StateAwaitingRetryConfirmation:
		if yn, ok := confirmation(lower); ok {
			return slotIntent(dialog.IntentConfirmOrDeny, dialog.SlotConfirmation, yn)
		}
		return dialog.NewIntent(dialog.IntentFallback)
	}

	return dialog.NewIntent(dialog.IntentFallback)
}

func slotIntent(name, slot, value string) dialog.Intent {
	return dialog.Intent{Name: name, Slots: map[string]string{slot: value}}
}

// confirmation normalizes yes/no answers, accent included.
func confirmation(lower string) (string, bool) {
	switch lower {
	case "si", "sí":
		return dialog.ConfirmYes, true
	case "no":
		return dialog.ConfirmNo, true
	}
	return "", false
}

// padTime turns "9:30" into "09:30" so the machine's fixed layout parses it.
func padTime(t string) string {
	if len(t) == 4 {
		return "0" + t
	}
	return t
}
