package interview

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from Status
		ev   Event
		to   Status
		err  error
	}{
		{StatusInProgress, EventAnswer, StatusInProgress, nil},
		{StatusInProgress, EventComplete, StatusCompleted, nil},
		{StatusInProgress, EventAbandon, StatusAbandoned, nil},
		{StatusCompleted, EventAnswer, StatusCompleted, ErrSessionComplete},
		{StatusCompleted, EventComplete, StatusCompleted, ErrSessionComplete},
		{StatusCompleted, EventAbandon, StatusCompleted, ErrSessionComplete},
		{StatusAbandoned, EventAnswer, StatusAbandoned, ErrSessionAbandoned},
		{StatusAbandoned, EventComplete, StatusAbandoned, ErrSessionAbandoned},
		{StatusAbandoned, EventAbandon, StatusAbandoned, ErrSessionAbandoned},
		{StatusInProgress, "pause", StatusInProgress, ErrInvalidTransition},
		{"unknown", EventAnswer, "unknown", ErrInvalidTransition},
	}
	for _, tt := range tests {
		to, err := Transition(tt.from, tt.ev)
		if to != tt.to {
			t.Errorf("Transition(%s, %s) = %s, want %s", tt.from, tt.ev, to, tt.to)
		}
		if tt.err == nil {
			if err != nil {
				t.Errorf("Transition(%s, %s) err = %v", tt.from, tt.ev, err)
			}
			continue
		}
		var se *StateError
		if !errors.As(err, &se) || !errors.Is(err, tt.err) {
			t.Errorf("Transition(%s, %s) err = %v, want StateError(%v)", tt.from, tt.ev, err, tt.err)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range Statuses {
		if got, want := s.Terminal(), s != StatusInProgress; got != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, got, want)
		}
	}
}

func TestStateErrorMessage(t *testing.T) {
	err := &StateError{SessionID: "s1", Status: StatusCompleted, Event: EventAnswer, Err: ErrSessionComplete}
	if got, want := err.Error(), "session s1 (completed): answer: session is complete"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	var k keyedMutex
	var mu sync.Mutex
	active, peak := 0, 0

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("s1")
			defer unlock()

			mu.Lock()
			active++
			peak = max(peak, active)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if peak != 1 {
		t.Errorf("peak holders = %d, want 1", peak)
	}
	if n := k.size(); n != 0 {
		t.Errorf("size = %d after release, want 0", n)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	var k keyedMutex
	unlockA := k.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := k.Lock("b")
		unlockB()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
	unlockA()
}
