package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yoockh/teachback/internal/models"
)

type TranscriptRepo interface {
	Append(ctx context.Context, entry *models.TranscriptEntry) error
	// ListBySession returns entries oldest first, preserving turn order.
	ListBySession(ctx context.Context, userID, sessionID string, limit int) ([]models.TranscriptEntry, error)
}

type transcriptRepo struct {
	db *gorm.DB
}

func NewTranscriptRepo(db *gorm.DB) TranscriptRepo {
	return &transcriptRepo{db: db}
}

func (r *transcriptRepo) Append(ctx context.Context, entry *models.TranscriptEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *transcriptRepo) ListBySession(ctx context.Context, userID, sessionID string, limit int) ([]models.TranscriptEntry, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("timestamp ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []models.TranscriptEntry
	err := q.Find(&rows).Error
	return rows, err
}
