package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Speaker string

const (
	SpeakerUser   Speaker = "user"
	SpeakerSystem Speaker = "system"
)

// TranscriptEntry is one turn of the teach-back dialogue. Append-only:
// rows are never updated or deleted once written.
type TranscriptEntry struct {
	ID        string          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string          `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	SessionID string          `gorm:"column:session_id;type:uuid;index" json:"session_id"`
	Speaker   Speaker         `gorm:"column:speaker;type:text" json:"speaker"`
	Content   string          `gorm:"column:content;type:text" json:"content"`
	WasVoice  bool            `gorm:"column:was_voice" json:"was_voice"`
	AudioURL  string          `gorm:"column:audio_url;type:text" json:"audio_url,omitempty"`
	// Embedding is nullable: rows written while no embedder is configured
	// carry NULL, never a zero-dimension vector.
	Embedding *pgvector.Vector `gorm:"column:embedding;type:vector(768)" json:"embedding,omitempty"`
	Timestamp time.Time       `gorm:"column:timestamp;type:timestamptz;index" json:"timestamp"`
	Metadata  datatypes.JSON  `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (TranscriptEntry) TableName() string { return "transcript_entries" }
