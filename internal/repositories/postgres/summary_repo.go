package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yoockh/teachback/internal/models"
	"github.com/yoockh/teachback/internal/utils"
)

type SummaryRepo interface {
	// Create writes the summary once; a second write for the same session
	// is ignored so endSession stays idempotent.
	Create(ctx context.Context, s *models.Summary) error
	GetBySession(ctx context.Context, sessionID string) (*models.Summary, error)
}

type summaryRepo struct {
	db *gorm.DB
}

func NewSummaryRepo(db *gorm.DB) SummaryRepo {
	return &summaryRepo{db: db}
}

func (r *summaryRepo) Create(ctx context.Context, s *models.Summary) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true,
		}).
		Create(s).Error
}

func (r *summaryRepo) GetBySession(ctx context.Context, sessionID string) (*models.Summary, error) {
	var row models.Summary
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}
