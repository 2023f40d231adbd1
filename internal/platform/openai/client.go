package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/httpx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/platform/promptstyle"
)

const (
	defaultBaseURL    = "https://api.openai.com"
	defaultModel      = "gpt-4.1-mini"
	defaultImageModel = "gpt-image-1"
	defaultImageSize  = "1024x1536"
	defaultTimeout    = 180 * time.Second
	defaultMaxRetries = 4
	serviceName       = "openai"
)

type ImageGeneration struct {
	Bytes         []byte
	MimeType      string
	RevisedPrompt string
}

type Client interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (ImageGeneration, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	ImageModel  string
	ImageSize   string
	Timeout     time.Duration
	MaxRetries  int
	Temperature *float64
}

type client struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	imageModel  string
	imageSize   string
	maxRetries  int
	temperature *float64
	httpClient  *http.Client
	sleep       func(ctx context.Context, d time.Duration) error
}

type option func(*client)

func withHTTPClient(hc *http.Client) option {
	return func(c *client) { c.httpClient = hc }
}

func withSleep(fn func(ctx context.Context, d time.Duration) error) option {
	return func(c *client) { c.sleep = fn }
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	return newClient(log, cfg)
}

func newClient(log *logger.Logger, cfg Config, opts ...option) (*client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	c := &client{
		log:         log.With("service", "OpenAIClient"),
		baseURL:     strings.TrimRight(firstNonEmpty(cfg.BaseURL, defaultBaseURL), "/"),
		apiKey:      apiKey,
		model:       firstNonEmpty(cfg.Model, defaultModel),
		imageModel:  firstNonEmpty(cfg.ImageModel, defaultImageModel),
		imageSize:   firstNonEmpty(cfg.ImageSize, defaultImageSize),
		maxRetries:  maxRetries,
		temperature: cfg.Temperature,
		httpClient:  httpx.NewClient(timeout),
		sleep:       httpx.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func firstNonEmpty(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if !httpx.IsSuccess(resp.StatusCode) {
		return resp, nil, httpx.ReadUpstreamError(serviceName, resp)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, raw, nil
}

// do retries transport errors and retryable statuses with jittered backoff,
// honoring Retry-After.
func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := time.Second
	for attempt := 0; ; attempt++ {
		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return apierr.External(uErr, "openai decode error")
			}
			return nil
		}

		var upErr *httpx.UpstreamError
		if errors.As(err, &upErr) {
			c.log.Warn("OpenAI request failed", "path", path, "status", upErr.StatusCode, "upstream_body", upErr.Body)
		}
		if !httpx.IsRetryableError(err) || attempt >= c.maxRetries {
			if upErr != nil {
				return upErr
			}
			return apierr.External(err, "openai request failed")
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if sErr := c.sleep(ctx, sleepFor); sErr != nil {
			return sErr
		}
		backoff *= 2
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model       string    `json:"model"`
	Input       []message `json:"input"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" && part.Text != "" {
				out.WriteString(part.Text)
			}
		}
	}
	return out.String()
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	if strings.TrimSpace(user) == "" {
		return "", apierr.BadRequest("message required")
	}
	req := responsesRequest{
		Model: c.model,
		Input: []message{
			{Role: "system", Content: promptstyle.ApplySystem(system)},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
	}
	var resp responsesResponse
	if err := c.do(ctx, http.MethodPost, "/v1/responses", req, &resp); err != nil {
		return "", err
	}
	if resp.Refusal != "" {
		return "", apierr.External(nil, "model refused: %s", resp.Refusal)
	}
	text := strings.TrimSpace(extractOutputText(resp))
	if text == "" {
		return "", apierr.External(nil, "no output_text found in response")
	}
	return text, nil
}

type imagesGenerationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n,omitempty"`
	Size   string `json:"size,omitempty"`
}

type imagesGenerationResponse struct {
	Data []struct {
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

func (c *client) GenerateImage(ctx context.Context, prompt string) (ImageGeneration, error) {
	var out ImageGeneration
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return out, apierr.BadRequest("image prompt required")
	}
	req := imagesGenerationRequest{Model: c.imageModel, Prompt: prompt, N: 1, Size: c.imageSize}

	var resp imagesGenerationResponse
	if err := c.do(ctx, http.MethodPost, "/v1/images/generations", req, &resp); err != nil {
		return out, err
	}
	if len(resp.Data) == 0 || strings.TrimSpace(resp.Data[0].B64JSON) == "" {
		return out, apierr.External(nil, "no image returned")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(resp.Data[0].B64JSON))
	if err != nil || len(raw) == 0 {
		return out, apierr.External(err, "decode image base64")
	}
	out.Bytes = raw
	out.MimeType = http.DetectContentType(raw)
	out.RevisedPrompt = strings.TrimSpace(resp.Data[0].RevisedPrompt)
	return out, nil
}
