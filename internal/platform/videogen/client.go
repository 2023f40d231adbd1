package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/httpx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

const (
	defaultBaseURL     = "https://api.hedra.com/web-app/public"
	defaultTimeout     = 120 * time.Second
	defaultResolution  = "720p"
	defaultAspectRatio = "9:16"
	serviceName        = "videogen"
)

type AssetType string

const (
	AssetImage AssetType = "image"
	AssetAudio AssetType = "audio"
)

// Job states reported by the status endpoint.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusError      = "error"
)

type Config struct {
	APIKey      string
	BaseURL     string
	ModelID     string
	Resolution  string
	AspectRatio string
	Timeout     time.Duration
}

type GenerationInput struct {
	ImageAssetID string
	AudioAssetID string
	TextPrompt   string
}

type JobStatus struct {
	Status       string `json:"status"`
	URL          string `json:"url"`
	DownloadURL  string `json:"download_url"`
	ErrorMessage string `json:"error_message"`
}

// ArtifactURL returns the primary url, falling back to download_url.
func (s JobStatus) ArtifactURL() string {
	if u := strings.TrimSpace(s.URL); u != "" {
		return u
	}
	return strings.TrimSpace(s.DownloadURL)
}

type Client struct {
	log         *logger.Logger
	apiKey      string
	baseURL     string
	modelID     string
	resolution  string
	aspectRatio string
	httpClient  *http.Client
}

type option func(*Client)

func withHTTPClient(hc *http.Client) option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(log *logger.Logger, cfg Config) (*Client, error) {
	return newClient(log, cfg)
}

func newClient(log *logger.Logger, cfg Config, opts ...option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing VIDEOGEN_API_KEY")
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		return nil, errors.New("missing VIDEOGEN_MODEL_ID")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	c := &Client{
		log:         log.With("client", "VideoGen"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		baseURL:     base,
		modelID:     strings.TrimSpace(cfg.ModelID),
		resolution:  firstNonEmpty(cfg.Resolution, defaultResolution),
		aspectRatio: firstNonEmpty(cfg.AspectRatio, defaultAspectRatio),
		httpClient:  httpx.NewClient(firstPositive(cfg.Timeout, defaultTimeout)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type createAssetRequest struct {
	Name string    `json:"name"`
	Type AssetType `json:"type"`
}

type idResponse struct {
	ID string `json:"id"`
}

// CreateAsset registers an asset record and returns its id.
func (c *Client) CreateAsset(ctx context.Context, name string, typ AssetType) (string, error) {
	var out idResponse
	if err := c.doJSON(ctx, http.MethodPost, "/assets", createAssetRequest{Name: name, Type: typ}, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.ID) == "" {
		return "", apierr.External(nil, "create asset: response missing id")
	}
	return out.ID, nil
}

// UploadAsset sends the binary content for an existing asset record.
func (c *Client) UploadAsset(ctx context.Context, assetID, filename string, content io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("copy asset content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}
	path := "/assets/" + url.PathEscape(assetID) + "/upload"
	return c.do(ctx, http.MethodPost, path, mw.FormDataContentType(), &buf, nil)
}

// UploadFile runs both upload phases: create the asset record, then send the bytes.
func (c *Client) UploadFile(ctx context.Context, name string, typ AssetType, content io.Reader) (string, error) {
	id, err := c.CreateAsset(ctx, name, typ)
	if err != nil {
		return "", err
	}
	if err := c.UploadAsset(ctx, id, name, content); err != nil {
		return "", err
	}
	return id, nil
}

type createGenerationRequest struct {
	Type            string          `json:"type"`
	AIModelID       string          `json:"ai_model_id"`
	StartKeyframeID string          `json:"start_keyframe_id"`
	AudioID         string          `json:"audio_id"`
	Inputs          generatedInputs `json:"generated_video_inputs"`
}

type generatedInputs struct {
	TextPrompt  string `json:"text_prompt"`
	Resolution  string `json:"resolution"`
	AspectRatio string `json:"aspect_ratio"`
}

// CreateGeneration submits a talking-avatar job and returns the job id.
func (c *Client) CreateGeneration(ctx context.Context, in GenerationInput) (string, error) {
	req := createGenerationRequest{
		Type:            "video",
		AIModelID:       c.modelID,
		StartKeyframeID: in.ImageAssetID,
		AudioID:         in.AudioAssetID,
		Inputs: generatedInputs{
			TextPrompt:  in.TextPrompt,
			Resolution:  c.resolution,
			AspectRatio: c.aspectRatio,
		},
	}
	var out idResponse
	if err := c.doJSON(ctx, http.MethodPost, "/generations", req, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.ID) == "" {
		return "", apierr.External(nil, "create generation: response missing id")
	}
	return out.ID, nil
}

func (c *Client) GetStatus(ctx context.Context, jobID string) (JobStatus, error) {
	var out JobStatus
	path := "/generations/" + url.PathEscape(jobID) + "/status"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return JobStatus{}, err
	}
	out.Status = strings.ToLower(strings.TrimSpace(out.Status))
	if out.Status == "" {
		return JobStatus{}, apierr.External(nil, "generation status: response missing status")
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var r io.Reader
	contentType := ""
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, r, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierr.External(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	if !httpx.IsSuccess(resp.StatusCode) {
		upErr := httpx.ReadUpstreamError(serviceName, resp)
		c.log.Error("Video generation request failed",
			"method", method,
			"path", path,
			"status", upErr.StatusCode,
			"upstream_body", upErr.Body,
		)
		return upErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apierr.External(err, "decode %s response", path)
	}
	return nil
}

func firstNonEmpty(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}

func firstPositive(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}
