package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InputMode string

const (
	InputText  InputMode = "text"
	InputVoice InputMode = "voice"
	InputMixed InputMode = "mixed"
)

type OutputMode string

const (
	OutputText      OutputMode = "text"
	OutputVoiceText OutputMode = "voice_text"
)

// SessionState mirrors the teach-back state machine. The authoritative
// transition rules live in internal/statemachine.
type SessionState string

const (
	StateTeaching    SessionState = "teaching"
	StateInterrupted SessionState = "interrupted"
	StateExamining   SessionState = "examining"
	StateCompleted   SessionState = "completed"
)

type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4
	UserID    string             `bson:"user_id" json:"user_id"`

	Topic      string       `bson:"topic,omitempty" json:"topic,omitempty"`
	InputMode  InputMode    `bson:"input_mode" json:"input_mode"`
	OutputMode OutputMode   `bson:"output_mode" json:"output_mode"`
	State      SessionState `bson:"state" json:"state"`

	// Degraded is set when every LLM backend failed on the latest turn and
	// cleared by the next successful one. The state machine state is left
	// untouched so the session resumes where it stopped.
	Degraded bool `bson:"degraded" json:"degraded"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
}

// IsVoiceBilled reports whether the session counts against the voice quota.
// Voice or mixed input, or spoken output, makes it a voice session.
func (s *Session) IsVoiceBilled() bool {
	return s.InputMode == InputVoice || s.InputMode == InputMixed || s.OutputMode == OutputVoiceText
}
