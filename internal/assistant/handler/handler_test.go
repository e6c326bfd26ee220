package handler

import (
	"context"
	"testing"
	"time"

	"github.com/agendavoz/agendavoz/pkg/calendar"
	"github.com/agendavoz/agendavoz/pkg/dialog"
	"github.com/agendavoz/agendavoz/pkg/events"
	"github.com/agendavoz/agendavoz/pkg/session"
)

type fakeGateway struct {
	events []calendar.Event
}

func (f *fakeGateway) EnsureAccess(context.Context, string) error { return nil }

func (f *fakeGateway) CreateEvent(_ context.Context, _, name string, start time.Time) (*calendar.Event, error) {
	ev := calendar.Event{ID: "evt-1", Subject: name, Start: start, End: start.Add(time.Hour)}
	f.events = append(f.events, ev)
	return &ev, nil
}

func (f *fakeGateway) EventsByDate(context.Context, string, time.Time) ([]calendar.Event, error) {
	return f.events, nil
}

func (f *fakeGateway) FindEvent(context.Context, string, string) (*calendar.Event, error) {
	return nil, nil
}

func (f *fakeGateway) UpdateEvent(context.Context, string, string, calendar.Fields) (*calendar.Event, error) {
	return nil, nil
}

func (f *fakeGateway) DeleteEvent(context.Context, string, string) (bool, error) {
	return true, nil
}

func newTestHandler(t *testing.T) (*TurnHandler, *session.Store, *events.Publisher) {
	t.Helper()
	m := dialog.NewMachine(&fakeGateway{})
	store := session.NewStore(time.Minute)
	pub := events.NewPublisher(nil, "assistant-test", "events")
	return NewTurnHandler(m, store, nil, pub, nil), store, pub
}

func TestHandleTurnPersistsState(t *testing.T) {
	h, store, _ := newTestHandler(t)

	resp := h.HandleTurn(t.Context(), Turn{
		SessionID: "s1",
		UserID:    "u1",
		Channel:   "alexa",
		Intent:    dialog.Intent{Name: dialog.IntentLaunch},
	})
	if resp.Speak == "" {
		t.Fatal("launch produced no speech")
	}

	h.HandleTurn(t.Context(), Turn{
		SessionID: "s1",
		UserID:    "u1",
		Intent: dialog.Intent{
			Name:  dialog.IntentMenuSelection,
			Slots: map[string]string{dialog.SlotOptionType: "crear un evento"},
		},
	})

	attrs := store.Get("s1")
	if attrs.State != dialog.StateCreateEventName {
		t.Errorf("state = %q, want %q", attrs.State, dialog.StateCreateEventName)
	}
}

func TestHandleTurnEndSessionDropsSession(t *testing.T) {
	h, store, _ := newTestHandler(t)

	h.HandleTurn(t.Context(), Turn{
		SessionID: "s1", UserID: "u1",
		Intent: dialog.Intent{Name: dialog.IntentLaunch},
	})
	if store.Len() != 1 {
		t.Fatalf("sessions = %d, want 1", store.Len())
	}

	resp := h.HandleTurn(t.Context(), Turn{
		SessionID: "s1", UserID: "u1",
		Intent: dialog.Intent{Name: dialog.IntentStop},
	})
	if !resp.EndSession {
		t.Error("stop did not end the session")
	}
	if store.Len() != 0 {
		t.Errorf("sessions = %d, want 0 after stop", store.Len())
	}
}

func TestHandleTurnEmitsEvents(t *testing.T) {
	h, _, pub := newTestHandler(t)

	ch := pub.Subscribe("test", 16)
	defer pub.Unsubscribe("test")

	h.HandleTurn(t.Context(), Turn{
		SessionID: "s1", UserID: "u1", Channel: "telegram",
		Intent: dialog.Intent{Name: dialog.IntentLaunch},
	})

	got := map[events.EventType]bool{}
	for len(ch) > 0 {
		env := <-ch
		got[env.Type] = true
	}

	if !got[events.SessionStarted] {
		t.Error("no session.started emitted for launch")
	}
	if !got[events.TurnCompleted] {
		t.Error("no turn.completed emitted")
	}
}

func TestEndSessionDeletes(t *testing.T) {
	h, store, _ := newTestHandler(t)

	h.HandleTurn(t.Context(), Turn{
		SessionID: "s1", UserID: "u1",
		Intent: dialog.Intent{Name: dialog.IntentLaunch},
	})
	h.EndSession(t.Context(), "s1", "USER_INITIATED")

	if store.Len() != 0 {
		t.Errorf("sessions = %d, want 0", store.Len())
	}
}
