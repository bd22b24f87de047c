package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yoockh/teachback/internal/utils"
)

type stubProvider struct {
	name   string
	answer string
	err    error
	delay  time.Duration
	calls  int
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Close() error { return nil }

func (s *stubProvider) StreamAnswer(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	s.calls++
	out := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errs)
		if s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
		if s.err != nil {
			errs <- s.err
			return
		}
		out <- s.answer
	}()
	return out, errs
}

func TestChain_PrimarySucceeds(t *testing.T) {
	primary := &stubProvider{name: "primary", answer: "hello"}
	fallback := &stubProvider{name: "fallback", answer: "unused"}
	c := NewChain(nil, time.Second, primary, fallback)

	got, err := c.Complete(context.Background(), "p")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("answer = %q, want %q", got, "hello")
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

// Primary times out, fallback answers, no error reaches the caller.
func TestChain_FailoverOnTimeout(t *testing.T) {
	primary := &stubProvider{name: "primary", answer: "slow", delay: time.Second}
	fallback := &stubProvider{name: "fallback", answer: "rescued"}
	c := NewChain(nil, 30*time.Millisecond, primary, fallback)

	got, err := c.Complete(context.Background(), "p")
	if err != nil {
		t.Fatal(err)
	}
	if got != "rescued" {
		t.Errorf("answer = %q, want %q", got, "rescued")
	}
}

func TestChain_AllFail(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("boom")}
	fallback := &stubProvider{name: "fallback", err: errors.New("also boom")}
	c := NewChain(nil, time.Second, primary, fallback)

	_, err := c.Complete(context.Background(), "p")
	if !utils.IsCode(err, utils.CodeAllLLMsFailed) {
		t.Fatalf("got %v, want ALL_LLMS_FAILED", err)
	}
	// both per-backend causes retained
	var ae *utils.AppError
	if !errors.As(err, &ae) || ae.Err == nil {
		t.Fatal("missing wrapped causes")
	}
}

func TestChain_EmptyCompletionIsFailure(t *testing.T) {
	primary := &stubProvider{name: "primary", answer: "   "}
	fallback := &stubProvider{name: "fallback", answer: "real answer"}
	c := NewChain(nil, time.Second, primary, fallback)

	got, err := c.Complete(context.Background(), "p")
	if err != nil {
		t.Fatal(err)
	}
	if got != "real answer" {
		t.Errorf("answer = %q, want fallback answer", got)
	}
}

func TestChain_NoBackends(t *testing.T) {
	c := NewChain(nil, time.Second)
	if _, err := c.Complete(context.Background(), "p"); !utils.IsCode(err, utils.CodeAllLLMsFailed) {
		t.Fatalf("got %v, want ALL_LLMS_FAILED", err)
	}
}

func TestChain_CanceledContextStopsChain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &stubProvider{name: "primary", err: errors.New("boom")}
	fallback := &stubProvider{name: "fallback", answer: "should not run"}
	c := NewChain(nil, time.Second, primary, fallback)

	if _, err := c.Complete(ctx, "p"); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called after cancellation")
	}
}
