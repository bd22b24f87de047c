package stt

import (
	"context"
	"os"
	"strconv"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

type GoogleSpeech struct {
	c *speech.Client

	Encoding     speechpb.RecognitionConfig_AudioEncoding
	SampleRateHz int32
	// Model tuned for multi-sentence explanations rather than short
	// utterances.
	Model string
}

func NewGoogleSpeech(ctx context.Context) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	g := &GoogleSpeech{
		c:            c,
		Encoding:     speechpb.RecognitionConfig_LINEAR16,
		SampleRateHz: 16000,
		Model:        "latest_long",
	}
	if v := os.Getenv("STT_SAMPLE_RATE_HZ"); v != "" {
		if hz, err := strconv.Atoi(v); err == nil && hz > 0 {
			g.SampleRateHz = int32(hz)
		}
	}
	if v := os.Getenv("STT_MODEL"); v != "" {
		g.Model = v
	}
	return g, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

// Transcribe recognizes one spoken teaching turn. A turn can span several
// recognition results, so segments are joined in order; the returned
// confidence is the weakest segment's, which is what the quality gate
// should judge. language example: "en-US", "id-ID".
func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error) {
	if language == "" {
		language = "en-US"
	}

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   g.Encoding,
			SampleRateHertz:            g.SampleRateHz,
			LanguageCode:               language,
			Model:                      g.Model,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", 0, err
	}

	var segments []string
	worstConf := 1.0
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		if alt.Transcript == "" {
			continue
		}
		segments = append(segments, strings.TrimSpace(alt.Transcript))
		if float64(alt.Confidence) < worstConf {
			worstConf = float64(alt.Confidence)
		}
	}
	if len(segments) == 0 {
		return "", 0, nil
	}

	return strings.Join(segments, " "), worstConf, nil
}
