package ratelimit

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yoockh/teachback/internal/models"
	"github.com/yoockh/teachback/internal/utils"
)

// fakeRedis emulates the reserve script against an in-memory map. The script
// runs under one lock, matching Redis's single-threaded execution.
type fakeRedis struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counters: map[string]int64{}}
}

func (f *fakeRedis) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	limit := int64(args[0].(int))
	cost := int64(args[1].(int))
	used := f.counters[keys[0]]

	if limit >= 0 && used+cost > limit {
		return redis.NewCmdResult([]interface{}{int64(0), used}, nil)
	}
	used += cost
	f.counters[keys[0]] = used
	return redis.NewCmdResult([]interface{}{int64(1), used}, nil)
}

func (f *fakeRedis) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]interface{}, len(keys))
	for i, k := range keys {
		if v, ok := f.counters[k]; ok {
			out[i] = strconv.FormatInt(v, 10)
		}
	}
	return redis.NewSliceResult(out, nil)
}

var testPlans = map[models.Plan]models.PlanLimits{
	models.PlanFree:    {TextPerDay: 0, VoicePerDay: 0},
	models.PlanStudent: {TextPerDay: 5, VoicePerDay: 2},
	models.PlanAdmin:   {TextPerDay: -1, VoicePerDay: -1},
}

func newTestLimiter() (*Limiter, *fakeRedis) {
	f := newFakeRedis()
	l := New(f, testPlans)
	return l, f
}

// Scenario: a student plan exhausts its 5 text sessions, the 6th is
// rejected, and a voice session still succeeds on its own counter.
func TestCheckAndReserve_IndependentCounters(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := l.CheckAndReserve(ctx, "u1", models.PlanStudent, false)
		if err != nil {
			t.Fatalf("text reservation %d: %v", i+1, err)
		}
		if want := 5 - (i + 1); res.Remaining != want {
			t.Errorf("reservation %d: remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}

	if _, err := l.CheckAndReserve(ctx, "u1", models.PlanStudent, false); !utils.IsCode(err, utils.CodeQuotaExceeded) {
		t.Fatalf("6th text session: got %v, want QUOTA_EXCEEDED", err)
	}

	res, err := l.CheckAndReserve(ctx, "u1", models.PlanStudent, true)
	if err != nil {
		t.Fatalf("voice after text exhaustion: %v", err)
	}
	if res.Remaining != 1 {
		t.Errorf("voice remaining = %d, want 1", res.Remaining)
	}
}

func TestCheckAndReserve_VoiceCostsDouble(t *testing.T) {
	l, f := newTestLimiter()
	ctx := context.Background()

	if _, err := l.CheckAndReserve(ctx, "u1", models.PlanStudent, true); err != nil {
		t.Fatal(err)
	}
	if _, err := l.CheckAndReserve(ctx, "u1", models.PlanStudent, false); err != nil {
		t.Fatal(err)
	}

	day := time.Now().UTC().Format("2006-01-02")
	voice := f.counters["quota:u1:"+day+":voice"]
	text := f.counters["quota:u1:"+day+":text"]
	if voice != 2*text {
		t.Errorf("voice units = %d, text units = %d, want voice == 2*text", voice, text)
	}
}

func TestCheckAndReserve_RejectionConsumesNothing(t *testing.T) {
	l, f := newTestLimiter()
	ctx := context.Background()

	if _, err := l.CheckAndReserve(ctx, "u1", models.PlanFree, false); !utils.IsCode(err, utils.CodeQuotaExceeded) {
		t.Fatalf("free plan text: got %v, want QUOTA_EXCEEDED", err)
	}
	if len(f.counters) != 0 {
		t.Errorf("rejected reservation left counters: %v", f.counters)
	}
}

func TestCheckAndReserve_AdminUnlimited(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		res, err := l.CheckAndReserve(ctx, "admin", models.PlanAdmin, i%2 == 0)
		if err != nil {
			t.Fatalf("admin reservation %d: %v", i, err)
		}
		if res.Remaining != -1 {
			t.Fatalf("admin remaining = %d, want -1", res.Remaining)
		}
	}
}

func TestCheckAndReserve_UnknownPlan(t *testing.T) {
	l, _ := newTestLimiter()
	if _, err := l.CheckAndReserve(context.Background(), "u1", "gold", false); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("got %v, want INVALID_ARGUMENT", err)
	}
}

// Concurrent reservations must never overspend a counter.
func TestCheckAndReserve_NoDoubleSpendUnderRace(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.CheckAndReserve(ctx, "u1", models.PlanStudent, false); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != 5 {
		t.Errorf("granted %d reservations, want exactly 5", granted)
	}
}

func TestGetQuota(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := l.CheckAndReserve(ctx, "u1", models.PlanStudent, false); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := l.CheckAndReserve(ctx, "u1", models.PlanStudent, true); err != nil {
		t.Fatal(err)
	}

	q, err := l.GetQuota(ctx, "u1", models.PlanStudent)
	if err != nil {
		t.Fatal(err)
	}
	want := models.Quota{TextUsed: 3, TextLimit: 5, VoiceUsed: 1, VoiceLimit: 2}
	if *q != want {
		t.Errorf("quota = %+v, want %+v", *q, want)
	}
}

func TestGetQuota_FreshUser(t *testing.T) {
	l, _ := newTestLimiter()

	q, err := l.GetQuota(context.Background(), "nobody", models.PlanStudent)
	if err != nil {
		t.Fatal(err)
	}
	if q.TextUsed != 0 || q.VoiceUsed != 0 {
		t.Errorf("fresh user has usage: %+v", q)
	}
}
