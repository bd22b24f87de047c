// Package voice wraps the speech providers behind one processor with lazy
// per-use health checks. It reports typed failures and leaves every
// degradation decision to the session manager.
package voice

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/teachback/internal/providers/stt"
	"github.com/yoockh/teachback/internal/providers/tts"
	"github.com/yoockh/teachback/internal/utils"
)

const (
	defaultCallTimeout   = 15 * time.Second
	defaultMinConfidence = 0.4

	// After this many consecutive failures the engine is considered down
	// until the cooldown passes, so health checks stay cheap.
	failureThreshold = 3
	failureCooldown  = 30 * time.Second
)

// health tracks consecutive failures of one speech engine.
type health struct {
	mu          sync.Mutex
	consecutive int
	lastFailure time.Time
}

func (h *health) ok(now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.consecutive < failureThreshold {
		return true
	}
	return now.Sub(h.lastFailure) > failureCooldown
}

func (h *health) record(err error, now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		h.consecutive = 0
		return
	}
	h.consecutive++
	h.lastFailure = now
}

type Processor struct {
	stt stt.Provider
	tts tts.Provider
	log *logrus.Logger

	CallTimeout   time.Duration
	MinConfidence float64

	sttHealth health
	ttsHealth health
	now       func() time.Time
}

// New builds a processor. Either provider may be nil, which makes that
// modality permanently unavailable without disabling the other.
func New(sttP stt.Provider, ttsP tts.Provider, log *logrus.Logger) *Processor {
	return &Processor{
		stt:           sttP,
		tts:           ttsP,
		log:           log,
		CallTimeout:   defaultCallTimeout,
		MinConfidence: defaultMinConfidence,
		now:           time.Now,
	}
}

// STTAvailable is checked before each transcription, not at boot.
func (p *Processor) STTAvailable() bool {
	return p.stt != nil && p.sttHealth.ok(p.now())
}

// TTSAvailable is checked before each synthesis, not at boot.
func (p *Processor) TTSAvailable() bool {
	return p.tts != nil && p.ttsHealth.ok(p.now())
}

// Transcribe converts one audio turn to text. Returns STT_UNAVAILABLE when
// the engine is down, STT_FAILED on call failure, and AUDIO_QUALITY_POOR
// when the engine answered below the confidence floor.
func (p *Processor) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	const op = "voice.Processor.Transcribe"

	if len(audio) == 0 {
		return "", utils.E(utils.CodeInvalidArgument, op, "empty audio", nil)
	}
	if !p.STTAvailable() {
		return "", utils.E(utils.CodeSTTUnavailable, op, "speech-to-text is unavailable", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, p.CallTimeout)
	defer cancel()

	text, conf, err := p.stt.Transcribe(ctx, audio, language)
	p.sttHealth.record(err, p.now())
	if err != nil {
		if p.log != nil {
			p.log.WithError(err).Warn("stt call failed")
		}
		return "", utils.E(utils.CodeSTTFailed, op, "speech-to-text failed", err)
	}
	if text == "" || conf < p.MinConfidence {
		return "", utils.E(utils.CodeAudioQualityPoor, op, "audio quality too poor to transcribe", nil)
	}
	return text, nil
}

// Synthesize converts one response turn to audio. Returns TTS_UNAVAILABLE
// when the engine is down and TTS_FAILED on call failure.
func (p *Processor) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	const op = "voice.Processor.Synthesize"

	if text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "empty text", nil)
	}
	if !p.TTSAvailable() {
		return nil, utils.E(utils.CodeTTSUnavailable, op, "speech synthesis is unavailable", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, p.CallTimeout)
	defer cancel()

	audio, err := p.tts.Synthesize(ctx, text, language)
	p.ttsHealth.record(err, p.now())
	if err != nil {
		if p.log != nil {
			p.log.WithError(err).Warn("tts call failed")
		}
		return nil, utils.E(utils.CodeTTSFailed, op, "speech synthesis failed", err)
	}
	return audio, nil
}
