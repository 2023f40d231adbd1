package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/gcp"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

const (
	defaultTimeout  = 60 * time.Second
	defaultLanguage = "ko-KR"
	defaultVoice    = "ko-KR-Neural2-A"
	defaultEncoding = "MP3"
)

// VoiceConfig is the fixed voice a deployment narrates with.
type VoiceConfig struct {
	LanguageCode  string
	Name          string
	AudioEncoding string
}

type Config struct {
	// APIKey authenticates with an API key; Credentials (service-account JSON
	// or key file path) is used otherwise, then application defaults.
	APIKey      string
	Credentials string
	// Endpoint overrides the default texttospeech.googleapis.com:443.
	Endpoint string
	Voice    VoiceConfig
	Timeout  time.Duration
}

// Enabled reports whether any explicit credential is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != "" || strings.TrimSpace(c.Credentials) != ""
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Client struct {
	log      *logger.Logger
	client   *texttospeech.Client
	voice    *texttospeechpb.VoiceSelectionParams
	audio    *texttospeechpb.AudioConfig
	encoding string
	timeout  time.Duration
}

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	return newClient(ctx, log, cfg)
}

func newClient(ctx context.Context, log *logger.Logger, cfg Config, extra ...option.ClientOption) (*Client, error) {
	voice := cfg.Voice.withDefaults()
	enc, ok := texttospeechpb.AudioEncoding_value[strings.ToUpper(voice.AudioEncoding)]
	if !ok || enc == int32(texttospeechpb.AudioEncoding_AUDIO_ENCODING_UNSPECIFIED) {
		return nil, fmt.Errorf("unsupported TTS_AUDIO_ENCODING %q", voice.AudioEncoding)
	}

	var opts []option.ClientOption
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	} else {
		opts = append(opts, gcp.ClientOptions(cfg.Credentials)...)
	}
	if ep := strings.TrimSpace(cfg.Endpoint); ep != "" {
		opts = append(opts, option.WithEndpoint(ep))
	}
	opts = append(opts, extra...)

	sc, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("texttospeech client: %w", err)
	}
	// A failed synthesis fails the run; no SDK retries.
	sc.CallOptions.SynthesizeSpeech = nil

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		log:    log.With("client", "TTS"),
		client: sc,
		voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.Name,
		},
		audio:    &texttospeechpb.AudioConfig{AudioEncoding: texttospeechpb.AudioEncoding(enc)},
		encoding: voice.AudioEncoding,
		timeout:  timeout,
	}, nil
}

func (v VoiceConfig) withDefaults() VoiceConfig {
	if strings.TrimSpace(v.LanguageCode) == "" {
		v.LanguageCode = defaultLanguage
	}
	if strings.TrimSpace(v.Name) == "" {
		v.Name = defaultVoice
	}
	if strings.TrimSpace(v.AudioEncoding) == "" {
		v.AudioEncoding = defaultEncoding
	}
	return v
}

// Synthesize performs a single synthesis call. Failures are not retried.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apierr.Validation("no script available")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input:       &texttospeechpb.SynthesisInput{InputSource: &texttospeechpb.SynthesisInput_Text{Text: text}},
		Voice:       c.voice,
		AudioConfig: c.audio,
	})
	if err != nil {
		c.log.Error("TTS synthesis failed", "code", status.Code(err).String(), "error", err)
		return nil, mapError(err)
	}
	audio := resp.GetAudioContent()
	if len(audio) == 0 {
		return nil, apierr.External(nil, "tts response missing audio content")
	}
	c.log.Debug("TTS synthesized",
		"chars", len([]rune(text)),
		"bytes", len(audio),
		"encoding", c.encoding,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return audio, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apierr.Timeout("tts request timed out")
	}
	st, ok := status.FromError(err)
	if !ok {
		return apierr.External(err, "tts request failed")
	}
	if st.Code() == codes.DeadlineExceeded {
		return apierr.Timeout("tts request timed out")
	}
	return apierr.External(err, "tts synthesis failed (%s): %s", st.Code(), st.Message())
}
