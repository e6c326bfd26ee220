package dialog

import (
	"testing"

	"github.com/agendavoz/agendavoz/pkg/calendar"
)

func TestCloneIsDeep(t *testing.T) {
	a := DefaultAttributes()
	a.OldData = &EventSnapshot{Name: "Dentista", Date: "2026-09-01", Hour: "10:00"}
	a.DailyEvents = []calendar.Event{{ID: "a", Subject: "Reunión"}}

	cp := a.Clone()
	cp.OldData.Name = "otro"
	cp.DailyEvents[0].Subject = "otro"

	if a.OldData.Name != "Dentista" {
		t.Error("clone shares the old-data snapshot")
	}
	if a.DailyEvents[0].Subject != "Reunión" {
		t.Error("clone shares the daily slice")
	}
}

func TestParseState(t *testing.T) {
	s, err := ParseState("CANCEL_EVENT_NAME")
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	if s != StateCancelEventName {
		t.Errorf("state = %q", s)
	}

	if _, err := ParseState("NOPE"); err == nil {
		t.Error("expected an error for an unknown label")
	}
	if State("NOPE").Valid() {
		t.Error("unknown label reported valid")
	}
}
