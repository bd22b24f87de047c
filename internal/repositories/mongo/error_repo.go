package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yoockh/teachback/internal/models"
)

type ErrorRepository interface {
	InsertMany(ctx context.Context, records []models.ErrorRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]models.ErrorRecord, error)
}

type errorRepo struct {
	col *mongo.Collection
}

func NewErrorRepo(db *mongo.Database) ErrorRepository {
	return &errorRepo{col: db.Collection("error_records")}
}

func (r *errorRepo) InsertMany(ctx context.Context, records []models.ErrorRecord) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i := range records {
		docs[i] = records[i]
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}

func (r *errorRepo) ListBySession(ctx context.Context, sessionID string) ([]models.ErrorRecord, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "detected_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ErrorRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
