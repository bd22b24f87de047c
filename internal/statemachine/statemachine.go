// Package statemachine holds the teach-back session lifecycle:
//
//	teaching -> interrupted -> teaching -> examining -> completed
//
// Transition is a pure function; Machine adds an audit trail on top of it.
package statemachine

import (
	"time"

	"github.com/yoockh/teachback/internal/models"
	"github.com/yoockh/teachback/internal/utils"
)

type Event string

const (
	EventSubmitInput Event = "submit_input"
	EventInterrupt   Event = "interrupt"
	EventAcknowledge Event = "acknowledge"
	EventStartExam   Event = "start_examination"
	EventEndSession  Event = "end_session"
)

// transitions maps (state, event) to the next state. Absence means the
// event is invalid in that state. submit_input is a teaching-only
// self-loop: the turn is processed but the state does not move; exam
// answers are their own operation, not submit_input.
var transitions = map[models.SessionState]map[Event]models.SessionState{
	models.StateTeaching: {
		EventSubmitInput: models.StateTeaching,
		EventInterrupt:   models.StateInterrupted,
		EventStartExam:   models.StateExamining,
		EventEndSession:  models.StateCompleted,
	},
	models.StateInterrupted: {
		EventAcknowledge: models.StateTeaching,
		EventEndSession:  models.StateCompleted,
	},
	models.StateExamining: {
		EventEndSession: models.StateCompleted,
	},
	models.StateCompleted: {},
}

// Transition returns the state reached by applying event to state. Invalid
// combinations return the unchanged state and an INVALID_STATE_TRANSITION
// error; there is no partial effect to roll back.
func Transition(state models.SessionState, event Event) (models.SessionState, error) {
	if next, ok := transitions[state][event]; ok {
		return next, nil
	}
	return state, utils.E(utils.CodeInvalidStateTransition, "statemachine.Transition",
		string(event)+" not allowed in state "+string(state), nil)
}

// Attempt is one audit log entry. Failed attempts are logged too.
type Attempt struct {
	Event Event               `json:"event"`
	From  models.SessionState `json:"from"`
	To    models.SessionState `json:"to"`
	OK    bool                `json:"ok"`
	At    time.Time           `json:"at"`
}

// Machine tracks the current state of one session plus the history of every
// transition attempt. Not safe for concurrent use; the session manager
// serializes access per session.
type Machine struct {
	state   models.SessionState
	history []Attempt
	now     func() time.Time
}

func New() *Machine {
	return NewAt(models.StateTeaching)
}

// NewAt rebuilds a machine for a session restored from storage.
func NewAt(state models.SessionState) *Machine {
	return &Machine{state: state, now: time.Now}
}

func (m *Machine) State() models.SessionState { return m.state }

// History returns a copy of the audit log.
func (m *Machine) History() []Attempt {
	out := make([]Attempt, len(m.history))
	copy(out, m.history)
	return out
}

// Apply attempts event and records the outcome. On error the state is
// unchanged.
func (m *Machine) Apply(event Event) (models.SessionState, error) {
	next, err := Transition(m.state, event)
	m.history = append(m.history, Attempt{
		Event: event,
		From:  m.state,
		To:    next,
		OK:    err == nil,
		At:    m.now().UTC(),
	})
	if err != nil {
		return m.state, err
	}
	m.state = next
	return m.state, nil
}
