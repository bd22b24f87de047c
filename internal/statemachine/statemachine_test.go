package statemachine

import (
	"testing"

	"github.com/yoockh/teachback/internal/models"
	"github.com/yoockh/teachback/internal/utils"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		state   models.SessionState
		event   Event
		want    models.SessionState
		wantErr bool
	}{
		{"teaching accepts input", models.StateTeaching, EventSubmitInput, models.StateTeaching, false},
		{"teaching interrupts", models.StateTeaching, EventInterrupt, models.StateInterrupted, false},
		{"teaching starts exam", models.StateTeaching, EventStartExam, models.StateExamining, false},
		{"teaching ends", models.StateTeaching, EventEndSession, models.StateCompleted, false},
		{"teaching rejects acknowledge", models.StateTeaching, EventAcknowledge, models.StateTeaching, true},

		{"interrupted acknowledges", models.StateInterrupted, EventAcknowledge, models.StateTeaching, false},
		{"interrupted ends", models.StateInterrupted, EventEndSession, models.StateCompleted, false},
		{"interrupted rejects input", models.StateInterrupted, EventSubmitInput, models.StateInterrupted, true},
		{"interrupted rejects exam", models.StateInterrupted, EventStartExam, models.StateInterrupted, true},
		{"interrupted rejects interrupt", models.StateInterrupted, EventInterrupt, models.StateInterrupted, true},

		{"examining rejects input", models.StateExamining, EventSubmitInput, models.StateExamining, true},
		{"examining ends", models.StateExamining, EventEndSession, models.StateCompleted, false},
		{"examining rejects acknowledge", models.StateExamining, EventAcknowledge, models.StateExamining, true},
		{"examining rejects exam restart", models.StateExamining, EventStartExam, models.StateExamining, true},

		{"completed rejects input", models.StateCompleted, EventSubmitInput, models.StateCompleted, true},
		{"completed rejects end", models.StateCompleted, EventEndSession, models.StateCompleted, true},
		{"completed rejects exam", models.StateCompleted, EventStartExam, models.StateCompleted, true},
		{"completed rejects acknowledge", models.StateCompleted, EventAcknowledge, models.StateCompleted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.state, tt.event)
			if got != tt.want {
				t.Errorf("Transition() state = %q, want %q", got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("Transition() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !utils.IsCode(err, utils.CodeInvalidStateTransition) {
				t.Errorf("expected INVALID_STATE_TRANSITION, got %v", err)
			}
		})
	}
}

// Examining is only reachable through teaching, and completed is a dead end.
func TestReachability(t *testing.T) {
	for from, events := range transitions {
		for ev, to := range events {
			if to == models.StateExamining && from != models.StateTeaching {
				t.Errorf("examining reachable from %q via %q", from, ev)
			}
			if from == models.StateCompleted {
				t.Errorf("completed has outgoing transition %q", ev)
			}
		}
	}
}

func TestMachine_AuditsFailedAttempts(t *testing.T) {
	m := New()

	if _, err := m.Apply(EventAcknowledge); err == nil {
		t.Fatal("expected invalid transition")
	}
	if m.State() != models.StateTeaching {
		t.Fatalf("state mutated on failed attempt: %q", m.State())
	}

	if _, err := m.Apply(EventInterrupt); err != nil {
		t.Fatalf("interrupt: %v", err)
	}
	if _, err := m.Apply(EventAcknowledge); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	h := m.History()
	if len(h) != 3 {
		t.Fatalf("history length = %d, want 3", len(h))
	}
	if h[0].OK || !h[1].OK || !h[2].OK {
		t.Errorf("history outcomes wrong: %+v", h)
	}
	for i := 1; i < len(h); i++ {
		if h[i].At.Before(h[i-1].At) {
			t.Errorf("history timestamps not monotonic at %d", i)
		}
	}
}

func TestMachine_FullLifecycle(t *testing.T) {
	m := New()

	steps := []struct {
		event Event
		want  models.SessionState
	}{
		{EventSubmitInput, models.StateTeaching},
		{EventInterrupt, models.StateInterrupted},
		{EventAcknowledge, models.StateTeaching},
		{EventStartExam, models.StateExamining},
		{EventEndSession, models.StateCompleted},
	}
	for _, s := range steps {
		got, err := m.Apply(s.event)
		if err != nil {
			t.Fatalf("%s: %v", s.event, err)
		}
		if got != s.want {
			t.Fatalf("%s: state = %q, want %q", s.event, got, s.want)
		}
	}

	// terminal: nothing re-enters teaching
	for _, ev := range []Event{EventSubmitInput, EventAcknowledge, EventStartExam, EventEndSession, EventInterrupt} {
		if _, err := m.Apply(ev); err == nil {
			t.Errorf("completed accepted %q", ev)
		}
	}
}
