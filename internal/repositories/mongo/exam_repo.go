package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yoockh/teachback/internal/models"
	"github.com/yoockh/teachback/internal/utils"
)

type ExamRepository interface {
	InsertQuestion(ctx context.Context, e *models.Examination) error
	// Grade attaches answer, evaluation, and score to the open (unanswered)
	// examination matching the question.
	Grade(ctx context.Context, sessionID, question, answer, evaluation string, score float64, answeredAt time.Time) error
	ListBySession(ctx context.Context, sessionID string) ([]models.Examination, error)
}

type examRepo struct {
	col *mongo.Collection
}

func NewExamRepo(db *mongo.Database) ExamRepository {
	return &examRepo{col: db.Collection("examinations")}
}

func (r *examRepo) InsertQuestion(ctx context.Context, e *models.Examination) error {
	if e.AskedAt.IsZero() {
		e.AskedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *examRepo) Grade(ctx context.Context, sessionID, question, answer, evaluation string, score float64, answeredAt time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"session_id":  sessionID,
			"question":    question,
			"answered_at": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{
			"answer":      answer,
			"evaluation":  evaluation,
			"score":       score,
			"answered_at": answeredAt.UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *examRepo) ListBySession(ctx context.Context, sessionID string) ([]models.Examination, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "asked_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Examination
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
