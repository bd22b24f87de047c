package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityCritical Severity = "critical"
)

// ErrorRecord is a mistake the evaluator found in the user's explanation.
// Immutable once created.
type ErrorRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`

	Span       string   `bson:"span" json:"span"` // offending text
	Correction string   `bson:"correction" json:"correction"`
	Context    string   `bson:"context,omitempty" json:"context,omitempty"`
	Severity   Severity `bson:"severity" json:"severity"`

	DetectedAt time.Time `bson:"detected_at" json:"detected_at"`
}

// Interrupts reports whether a finding of this severity pauses teaching.
// Minor findings are recorded but do not interrupt.
func (s Severity) Interrupts() bool {
	return s == SeverityModerate || s == SeverityCritical
}
