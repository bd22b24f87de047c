package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// SummaryScoreMax bounds the overall session score.
const SummaryScoreMax = 100

// Summary is the final report for a completed session, written exactly once
// when the session transitions into completed and read-only thereafter.
type Summary struct {
	SessionID string `gorm:"column:session_id;type:uuid;primaryKey" json:"session_id"`
	UserID    string `gorm:"column:user_id;type:uuid;index" json:"user_id"`

	TotalErrors int `gorm:"column:total_errors" json:"total_errors"`

	MissedConcepts  pq.StringArray `gorm:"column:missed_concepts;type:text[]" json:"missed_concepts"`
	StrongAreas     pq.StringArray `gorm:"column:strong_areas;type:text[]" json:"strong_areas"`
	Recommendations pq.StringArray `gorm:"column:recommendations;type:text[]" json:"recommendations"`

	OverallScore float64 `gorm:"column:overall_score" json:"overall_score"` // 0..SummaryScoreMax

	// Rubric holds the raw scoring breakdown (per-question scores, error
	// deductions) for later inspection.
	Rubric datatypes.JSON `gorm:"column:rubric;type:jsonb" json:"rubric"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Summary) TableName() string { return "summaries" }
