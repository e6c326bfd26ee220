package telegram

import (
	"testing"

	"github.com/agendavoz/agendavoz/pkg/dialog"
)

func TestRecognize(t *testing.T) {
	tests := []struct {
		name     string
		state    dialog.State
		text     string
		want     string
		wantSlot string
		wantVal  string
	}{
		{"start command", dialog.StateMenuSelection, "/start", dialog.IntentLaunch, "", ""},
		{"greeting launches", dialog.StateCancelEventName, "Hola", dialog.IntentLaunch, "", ""},
		{"stop word", dialog.StateMenuSelection, "salir", dialog.IntentStop, "", ""},
		{"help word", dialog.StateCreateEventDate, "ayuda", dialog.IntentHelp, "", ""},

		{"menu option", dialog.StateMenuSelection, "Cancelar un evento",
			dialog.IntentMenuSelection, dialog.SlotOptionType, "cancelar un evento"},
		{"event name keeps case", dialog.StateCreateEventName, "Cita con Ana",
			dialog.IntentCreateEvent, dialog.SlotEventName, "Cita con Ana"},
		{"valid date", dialog.StateCreateEventDate, "2026-09-01",
			dialog.IntentSpecifyDate, dialog.SlotEventDate, "2026-09-01"},
		{"garbage date falls back", dialog.StateCreateEventDate, "mañana", dialog.IntentFallback, "", ""},
		{"time padded", dialog.StateCreateEventTime, "9:30",
			dialog.IntentSpecifyTime, dialog.SlotEventTime, "09:30"},
		{"garbage time falls back", dialog.StateCreateEventTime, "temprano", dialog.IntentFallback, "", ""},

		{"accented yes", dialog.StateAskingFullDescription, "Sí",
			dialog.IntentConfirmOrDeny, dialog.SlotConfirmation, "si"},
		{"no answer", dialog.StateAwaitingRetryConfirmation, "no",
			dialog.IntentConfirmOrDeny, dialog.SlotConfirmation, "no"},
		{"name instead of yes", dialog.StateAskingFullDescription, "reunión",
			dialog.IntentCreateEvent, dialog.SlotEventName, "reunión"},
		{"retry wants yes or no", dialog.StateAwaitingRetryConfirmation, "tal vez", dialog.IntentFallback, "", ""},

		{"criteria lowered", dialog.StateQueryCriteria, "Por Nombre",
			dialog.IntentSearchCriteria, dialog.SlotCriteria, "por nombre"},
		{"modify target", dialog.StateModifyEventName, "Dentista",
			dialog.IntentModifyStart, dialog.SlotOldEventName, "Dentista"},
		{"field choice", dialog.StateModifyEventField, "el horario",
			dialog.IntentSelectField, dialog.SlotFieldName, "el horario"},
		{"new value as date", dialog.StateModifyNewValue, "2026-10-05",
			dialog.IntentSpecifyDate, dialog.SlotEventDate, "2026-10-05"},
		{"new value as time", dialog.StateModifyNewValue, "18:00",
			dialog.IntentSpecifyTime, dialog.SlotEventTime, "18:00"},
		{"new value as name", dialog.StateModifyNewValue, "Cena familiar",
			dialog.IntentCreateEvent, dialog.SlotEventName, "Cena familiar"},
		{"cancel target", dialog.StateCancelEventName, "Dentista",
			dialog.IntentCancelEvent, dialog.SlotEventToCancel, "Dentista"},

		{"unknown state falls back", dialog.State("BOGUS"), "hola qué tal", dialog.IntentFallback, "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := Recognize(tc.state, tc.text)
			if in.Name != tc.want {
				t.Fatalf("intent = %q, want %q", in.Name, tc.want)
			}
			if tc.wantSlot == "" {
				return
			}
			if got := in.Slot(tc.wantSlot); got != tc.wantVal {
				t.Errorf("slot %s = %q, want %q", tc.wantSlot, got, tc.wantVal)
			}
		})
	}
}
