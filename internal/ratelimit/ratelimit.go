// Package ratelimit enforces daily per-user session quotas. Counters live in
// Redis so they stay correct across instances; check and increment happen in
// a single server-side script, never read-modify-write from Go.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yoockh/teachback/internal/models"
	"github.com/yoockh/teachback/internal/utils"
)

// Unit costs per reservation. Voice sessions burn double against the voice
// counter; the text counter is untouched by voice sessions and vice versa.
const (
	textCost  = 1
	voiceCost = 2
)

const counterTTL = 48 * time.Hour

// reserveScript checks and increments atomically.
// KEYS[1] counter key; ARGV[1] limit in units (-1 unlimited), ARGV[2] cost,
// ARGV[3] ttl seconds. Returns {allowed, used-after}.
const reserveScript = `
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
local cost = tonumber(ARGV[2])
if limit >= 0 and used + cost > limit then
  return {0, used}
end
used = redis.call('INCRBY', KEYS[1], cost)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[3]))
return {1, used}
`

// redisClient is the slice of go-redis the limiter needs. *redis.Client
// satisfies it; tests substitute a scripted fake.
type redisClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

type Reservation struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"` // sessions, -1 when unlimited
}

type Limiter struct {
	rdb   redisClient
	plans map[models.Plan]models.PlanLimits
	now   func() time.Time
}

func New(rdb redisClient, plans map[models.Plan]models.PlanLimits) *Limiter {
	return &Limiter{rdb: rdb, plans: plans, now: time.Now}
}

func (l *Limiter) key(userID string, day time.Time, isVoice bool) string {
	kind := "text"
	if isVoice {
		kind = "voice"
	}
	return fmt.Sprintf("quota:%s:%s:%s", userID, day.UTC().Format("2006-01-02"), kind)
}

func (l *Limiter) limits(plan models.Plan) (models.PlanLimits, error) {
	lim, ok := l.plans[plan]
	if !ok {
		return models.PlanLimits{}, utils.E(utils.CodeInvalidArgument, "Limiter.limits",
			"unknown plan "+string(plan), nil)
	}
	return lim, nil
}

// unitLimit converts a per-day session allotment to counter units.
func unitLimit(lim models.PlanLimits, isVoice bool) int {
	if lim.Unlimited(isVoice) {
		return -1
	}
	if isVoice {
		return lim.VoicePerDay * voiceCost
	}
	return lim.TextPerDay * textCost
}

// CheckAndReserve consumes one session from the matching counter if the
// day's allotment permits it. On QuotaExceeded nothing is consumed.
func (l *Limiter) CheckAndReserve(ctx context.Context, userID string, plan models.Plan, isVoice bool) (*Reservation, error) {
	const op = "Limiter.CheckAndReserve"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	lim, err := l.limits(plan)
	if err != nil {
		return nil, err
	}

	cost := textCost
	if isVoice {
		cost = voiceCost
	}
	limit := unitLimit(lim, isVoice)

	key := l.key(userID, l.now(), isVoice)
	vals, err := l.rdb.Eval(ctx, reserveScript, []string{key},
		limit, cost, int(counterTTL.Seconds())).Int64Slice()
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "quota reservation failed", err)
	}
	if len(vals) != 2 {
		return nil, utils.E(utils.CodeInternal, op, "unexpected script reply", nil)
	}

	allowed := vals[0] == 1
	used := int(vals[1])

	if !allowed {
		kind := "text"
		if isVoice {
			kind = "voice"
		}
		return nil, utils.E(utils.CodeQuotaExceeded, op,
			"daily "+kind+" session quota exhausted", nil)
	}

	remaining := -1
	if limit >= 0 {
		remaining = (limit - used) / cost
	}
	return &Reservation{Allowed: true, Remaining: remaining}, nil
}

// GetQuota reports today's usage in sessions, not units.
func (l *Limiter) GetQuota(ctx context.Context, userID string, plan models.Plan) (*models.Quota, error) {
	const op = "Limiter.GetQuota"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	lim, err := l.limits(plan)
	if err != nil {
		return nil, err
	}

	day := l.now()
	vals, err := l.rdb.MGet(ctx, l.key(userID, day, false), l.key(userID, day, true)).Result()
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "quota lookup failed", err)
	}

	textUnits := parseCounter(vals, 0)
	voiceUnits := parseCounter(vals, 1)

	return &models.Quota{
		TextUsed:   textUnits / textCost,
		TextLimit:  lim.TextPerDay,
		VoiceUsed:  voiceUnits / voiceCost,
		VoiceLimit: lim.VoicePerDay,
	}, nil
}

func parseCounter(vals []interface{}, i int) int {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	s, ok := vals[i].(string)
	if !ok {
		return 0
	}
	var n int
	fmt.Sscanf(s, "%d", &n)
	return n
}
