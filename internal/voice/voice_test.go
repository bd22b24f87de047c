package voice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yoockh/teachback/internal/utils"
)

type stubSTT struct {
	text string
	conf float64
	err  error
}

func (s *stubSTT) Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error) {
	return s.text, s.conf, s.err
}
func (s *stubSTT) Close() error { return nil }

type stubTTS struct {
	audio []byte
	err   error
}

func (s *stubTTS) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	return s.audio, s.err
}
func (s *stubTTS) Close() error { return nil }

func TestTranscribe(t *testing.T) {
	tests := []struct {
		name     string
		stt      *stubSTT
		audio    []byte
		wantText string
		wantCode utils.Code
	}{
		{"success", &stubSTT{text: "the krebs cycle", conf: 0.9}, []byte("a"), "the krebs cycle", ""},
		{"engine error", &stubSTT{err: errors.New("rpc")}, []byte("a"), "", utils.CodeSTTFailed},
		{"low confidence", &stubSTT{text: "mumble", conf: 0.1}, []byte("a"), "", utils.CodeAudioQualityPoor},
		{"empty result", &stubSTT{text: "", conf: 0.9}, []byte("a"), "", utils.CodeAudioQualityPoor},
		{"empty audio", &stubSTT{text: "x", conf: 0.9}, nil, "", utils.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.stt, nil, nil)
			got, err := p.Transcribe(context.Background(), tt.audio, "en-US")
			if tt.wantCode == "" {
				if err != nil {
					t.Fatal(err)
				}
				if got != tt.wantText {
					t.Errorf("text = %q, want %q", got, tt.wantText)
				}
				return
			}
			if !utils.IsCode(err, tt.wantCode) {
				t.Errorf("got %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestTranscribe_NilProviderUnavailable(t *testing.T) {
	p := New(nil, nil, nil)
	if p.STTAvailable() {
		t.Error("nil stt reported available")
	}
	_, err := p.Transcribe(context.Background(), []byte("a"), "")
	if !utils.IsCode(err, utils.CodeSTTUnavailable) {
		t.Errorf("got %v, want STT_UNAVAILABLE", err)
	}
}

func TestSynthesize(t *testing.T) {
	p := New(nil, &stubTTS{audio: []byte{1, 2, 3}}, nil)
	audio, err := p.Synthesize(context.Background(), "well explained", "en-US")
	if err != nil {
		t.Fatal(err)
	}
	if len(audio) != 3 {
		t.Errorf("audio length = %d, want 3", len(audio))
	}
}

func TestSynthesize_FailureAndUnavailable(t *testing.T) {
	p := New(nil, &stubTTS{err: errors.New("rpc")}, nil)
	if _, err := p.Synthesize(context.Background(), "x", ""); !utils.IsCode(err, utils.CodeTTSFailed) {
		t.Errorf("got %v, want TTS_FAILED", err)
	}

	p = New(nil, nil, nil)
	if _, err := p.Synthesize(context.Background(), "x", ""); !utils.IsCode(err, utils.CodeTTSUnavailable) {
		t.Errorf("got %v, want TTS_UNAVAILABLE", err)
	}
}

// Repeated failures open the breaker; a cooldown lets it retry.
func TestHealth_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	s := &stubSTT{err: errors.New("down")}
	p := New(s, nil, nil)

	clock := time.Now()
	p.now = func() time.Time { return clock }

	for i := 0; i < failureThreshold; i++ {
		if !p.STTAvailable() {
			t.Fatalf("breaker opened early at failure %d", i)
		}
		if _, err := p.Transcribe(context.Background(), []byte("a"), ""); !utils.IsCode(err, utils.CodeSTTFailed) {
			t.Fatal(err)
		}
	}

	if p.STTAvailable() {
		t.Fatal("breaker still closed after threshold")
	}
	if _, err := p.Transcribe(context.Background(), []byte("a"), ""); !utils.IsCode(err, utils.CodeSTTUnavailable) {
		t.Errorf("got %v, want STT_UNAVAILABLE while breaker open", err)
	}

	// after cooldown the engine gets another chance, and success resets it
	clock = clock.Add(failureCooldown + time.Second)
	s.err = nil
	s.text, s.conf = "recovered", 0.9

	if !p.STTAvailable() {
		t.Fatal("breaker did not half-open after cooldown")
	}
	if _, err := p.Transcribe(context.Background(), []byte("a"), ""); err != nil {
		t.Fatal(err)
	}
	if !p.STTAvailable() {
		t.Error("breaker did not reset after success")
	}
}
