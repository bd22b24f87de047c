package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yoockh/teachback/internal/models"
	"github.com/yoockh/teachback/internal/statemachine"
	"github.com/yoockh/teachback/internal/utils"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error)
	SetState(ctx context.Context, sessionID string, state models.SessionState) error
	SetDegraded(ctx context.Context, sessionID string, degraded bool) error
	// End marks the session completed. Returns utils.ErrNotFound when the
	// session was already completed, so callers can detect the race.
	End(ctx context.Context, sessionID string, endedAt time.Time) error
	// LogTransition appends one state-machine attempt, accepted or
	// rejected, to the session's audit trail.
	LogTransition(ctx context.Context, sessionID string, a statemachine.Attempt) error
	ListTransitions(ctx context.Context, sessionID string) ([]statemachine.Attempt, error)
}

type sessionRepo struct {
	col   *mongo.Collection
	audit *mongo.Collection
}

// transitionDoc is the stored form of one audit attempt.
type transitionDoc struct {
	SessionID string              `bson:"session_id"`
	Event     string              `bson:"event"`
	From      models.SessionState `bson:"from"`
	To        models.SessionState `bson:"to"`
	OK        bool                `bson:"ok"`
	At        time.Time           `bson:"at"`
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{
		col:   db.Collection("sessions"),
		audit: db.Collection("transition_log"),
	}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *sessionRepo) SetState(ctx context.Context, sessionID string, state models.SessionState) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "state": bson.M{"$ne": models.StateCompleted}},
		bson.M{"$set": bson.M{"state": state}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) SetDegraded(ctx context.Context, sessionID string, degraded bool) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"degraded": degraded}},
	)
	return err
}

func (r *sessionRepo) LogTransition(ctx context.Context, sessionID string, a statemachine.Attempt) error {
	_, err := r.audit.InsertOne(ctx, transitionDoc{
		SessionID: sessionID,
		Event:     string(a.Event),
		From:      a.From,
		To:        a.To,
		OK:        a.OK,
		At:        a.At,
	})
	return err
}

func (r *sessionRepo) ListTransitions(ctx context.Context, sessionID string) ([]statemachine.Attempt, error) {
	cur, err := r.audit.Find(ctx, bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []statemachine.Attempt
	for cur.Next(ctx) {
		var d transitionDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, statemachine.Attempt{
			Event: statemachine.Event(d.Event),
			From:  d.From,
			To:    d.To,
			OK:    d.OK,
			At:    d.At,
		})
	}
	return out, cur.Err()
}

func (r *sessionRepo) End(ctx context.Context, sessionID string, endedAt time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "state": bson.M{"$ne": models.StateCompleted}},
		bson.M{"$set": bson.M{
			"state":    models.StateCompleted,
			"ended_at": endedAt.UTC(),
			"degraded": false,
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
