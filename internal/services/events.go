package services

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// SessionEvent is pushed to the session's live event channel after every
// state-changing operation; the WebSocket handler forwards it verbatim.
type SessionEvent struct {
	Type      string `json:"type"` // turn|interruption|examination|degraded|completed
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	Payload   any    `json:"payload,omitempty"`
}

type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, ev SessionEvent) error
}

// EventChannel is the Redis pub/sub channel for one session.
func EventChannel(sessionID string) string { return "session:" + sessionID + ":events" }

type redisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) EventPublisher {
	return &redisPublisher{rdb: rdb}
}

func (p *redisPublisher) PublishSessionEvent(ctx context.Context, ev SessionEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, EventChannel(ev.SessionID), b).Err()
}
