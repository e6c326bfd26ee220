package outlook

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agendavoz/agendavoz/pkg/calendar"
)

var testLoc = func() *time.Location {
	loc, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		panic(err)
	}
	return loc
}()

func testGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	fixed := time.Date(2026, 8, 28, 9, 0, 0, 0, testLoc)
	return NewGateway(nil, testLoc,
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithClock(func() time.Time { return fixed }),
	)
}

func TestCreateEvent(t *testing.T) {
	var gotBody graphEvent
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/events" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		gotBody.ID = "evt-1"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(gotBody)
	})

	start := time.Date(2026, 9, 1, 10, 30, 0, 0, testLoc)
	ev, err := g.CreateEvent(t.Context(), "u1", "Dentista", start)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if gotBody.Subject != "Dentista" {
		t.Errorf("subject sent = %q", gotBody.Subject)
	}
	if gotBody.Start.DateTime != "2026-09-01T10:30:00" {
		t.Errorf("start sent = %q", gotBody.Start.DateTime)
	}
	if gotBody.End.DateTime != "2026-09-01T11:30:00" {
		t.Errorf("end sent = %q, want one hour after start", gotBody.End.DateTime)
	}
	if ev.ID != "evt-1" {
		t.Errorf("id = %q", ev.ID)
	}
	if !ev.Start.Equal(start) {
		t.Errorf("start = %v, want %v", ev.Start, start)
	}
}

func TestEventsByDateSkipsCancelled(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendarView" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("startDateTime") == "" || q.Get("endDateTime") == "" {
			t.Error("missing calendarView window parameters")
		}
		json.NewEncoder(w).Encode(graphEventList{Value: []graphEvent{
			{ID: "a", Subject: "Desayuno", Start: graphDateTime{DateTime: "2026-08-28T08:00:00.0000000", TimeZone: "America/Mexico_City"}, End: graphDateTime{DateTime: "2026-08-28T09:00:00", TimeZone: "America/Mexico_City"}},
			{ID: "b", Subject: "Cancelado", IsCancelled: true, Start: graphDateTime{DateTime: "2026-08-28T10:00:00", TimeZone: "America/Mexico_City"}, End: graphDateTime{DateTime: "2026-08-28T11:00:00", TimeZone: "America/Mexico_City"}},
		}})
	})

	day := time.Date(2026, 8, 28, 0, 0, 0, 0, testLoc)
	evs, err := g.EventsByDate(t.Context(), "u1", day)
	if err != nil {
		t.Fatalf("EventsByDate: %v", err)
	}
	if len(evs) != 1 {
		t.Fatalf("got %d events, want 1 (cancelled skipped)", len(evs))
	}
	if evs[0].Subject != "Desayuno" {
		t.Errorf("subject = %q", evs[0].Subject)
	}
	want := time.Date(2026, 8, 28, 8, 0, 0, 0, testLoc)
	if !evs[0].Start.Equal(want) {
		t.Errorf("start = %v, want %v (fractional seconds trimmed)", evs[0].Start, want)
	}
}

func TestFindEventNoMatchIsNil(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(graphEventList{})
	})

	ev, err := g.FindEvent(t.Context(), "u1", "Dentista")
	if err != nil {
		t.Fatalf("FindEvent: %v", err)
	}
	if ev != nil {
		t.Errorf("event = %+v, want nil", ev)
	}
}

func TestFindEventEscapesQuotes(t *testing.T) {
	var filter string
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		filter = r.URL.Query().Get("$filter")
		json.NewEncoder(w).Encode(graphEventList{})
	})

	if _, err := g.FindEvent(t.Context(), "u1", "cena de fin d'año"); err != nil {
		t.Fatalf("FindEvent: %v", err)
	}
	if filter == "" {
		t.Fatal("no $filter sent")
	}
	if want := "contains(subject,'cena de fin d''año')"; !strings.Contains(filter, want) {
		t.Errorf("filter = %q, want it to contain %q", filter, want)
	}
}

func TestDeleteEventGone(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"ErrorItemNotFound"}}`, http.StatusNotFound)
	})

	removed, err := g.DeleteEvent(t.Context(), "u1", "evt-1")
	if err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if removed {
		t.Error("removed = true, want false for a 404")
	}
}

func TestUnauthorizedMapsToAuthRequired(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"InvalidAuthenticationToken"}}`, http.StatusUnauthorized)
	})

	_, err := g.FindEvent(t.Context(), "u1", "Dentista")
	if !errors.Is(err, calendar.ErrAuthRequired) {
		t.Errorf("err = %v, want ErrAuthRequired", err)
	}
}

func TestServerErrorMapsToAPIError(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := g.EventsByDate(t.Context(), "u1", time.Now())
	if !errors.Is(err, calendar.ErrAPI) {
		t.Errorf("err = %v, want ErrAPI", err)
	}
}
