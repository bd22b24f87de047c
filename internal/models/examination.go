package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExamScoreMax bounds a single examination score.
const ExamScoreMax = 10

// Examination is one examiner question with the user's answer and its
// evaluation. Created only while the session is in the examining state.
type Examination struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`

	Question   string  `bson:"question" json:"question"`
	Answer     string  `bson:"answer,omitempty" json:"answer,omitempty"`
	Evaluation string  `bson:"evaluation,omitempty" json:"evaluation,omitempty"`
	Score      float64 `bson:"score" json:"score"` // 0..ExamScoreMax

	AskedAt    time.Time  `bson:"asked_at" json:"asked_at"`
	AnsweredAt *time.Time `bson:"answered_at,omitempty" json:"answered_at,omitempty"`
}
