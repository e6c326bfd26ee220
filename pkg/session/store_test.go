package session

import (
	"sync"
	"testing"
	"time"

	"github.com/agendavoz/agendavoz/pkg/dialog"
)

func TestGetUnknownSessionYieldsDefaults(t *testing.T) {
	s := NewStore(time.Minute)

	attrs := s.Get("nope")
	if attrs.State != dialog.StateMenuSelection {
		t.Errorf("state = %q", attrs.State)
	}
	if s.Len() != 0 {
		t.Error("Get must not create sessions")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	s := NewStore(time.Minute)

	attrs := dialog.DefaultAttributes()
	attrs.State = dialog.StateCreateEventDate
	attrs.EventName = "Dentista"
	s.Set("s1", attrs)

	got := s.Get("s1")
	if got.State != dialog.StateCreateEventDate || got.EventName != "Dentista" {
		t.Errorf("got %+v", got)
	}

	// The stored copy is isolated from later caller mutations.
	attrs.EventName = "otro"
	if s.Get("s1").EventName != "Dentista" {
		t.Error("store shares memory with the caller")
	}
}

func TestLockSerializesOneSession(t *testing.T) {
	s := NewStore(time.Minute)

	var order []int
	var mu sync.Mutex

	unlock := s.Lock("s1")

	done := make(chan struct{})
	go func() {
		u := s.Lock("s1")
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		u()
		close(done)
	}()

	mu.Lock()
	order = append(order, 1)
	mu.Unlock()
	unlock()
	<-done

	if order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v", order)
	}
}

func TestReap(t *testing.T) {
	s := NewStore(10 * time.Millisecond)
	s.Set("old", dialog.DefaultAttributes())

	time.Sleep(30 * time.Millisecond)
	s.Set("fresh", dialog.DefaultAttributes())

	if n := s.Reap(); n != 1 {
		t.Errorf("reaped %d, want 1", n)
	}
	if s.Len() != 1 {
		t.Errorf("sessions = %d, want 1", s.Len())
	}
	if s.Get("fresh").State != dialog.StateMenuSelection {
		t.Error("fresh session lost")
	}
}

func TestDelete(t *testing.T) {
	s := NewStore(time.Minute)
	s.Set("s1", dialog.DefaultAttributes())
	s.Delete("s1")
	if s.Len() != 0 {
		t.Errorf("sessions = %d", s.Len())
	}
}
