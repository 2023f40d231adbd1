package docent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/observability"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/platform/runlock"
	"github.com/yungbote/artspace-backend/internal/platform/tts"
	"github.com/yungbote/artspace-backend/internal/platform/videogen"
)

const (
	ModeAudio = "audio"
	ModeVideo = "video"
)

type Stage string

const (
	StageScriptResolved   Stage = "script_resolved"
	StageAudioSynthesized Stage = "audio_synthesized"
	StageImageResolved    Stage = "image_resolved"
	StageAssetsUploaded   Stage = "assets_uploaded"
	StageJobSubmitted     Stage = "job_submitted"
	StagePolling          Stage = "polling"
	StageDownloaded       Stage = "downloaded"
	StageDone             Stage = "done"
)

// StageFunc observes pipeline progress (0..100).
type StageFunc func(stage Stage, progress int)

// ArtStore is the persistence adapter the pipeline reads from and writes to.
type ArtStore interface {
	GetByID(dbc dbctx.Context, id uint) (*types.Art, error)
	RecordDocent(dbc dbctx.Context, id uint, rec types.DocentRecord) error
}

type VideoGenerator interface {
	StatusGetter
	UploadFile(ctx context.Context, name string, typ videogen.AssetType, content io.Reader) (string, error)
	CreateGeneration(ctx context.Context, in videogen.GenerationInput) (string, error)
}

type Request struct {
	ArtID       uint
	Mode        string
	Script      string
	AvatarImage string
	DisplayName string
}

type Result struct {
	Mode      string `json:"mode"`
	AudioPath string `json:"audio_path"`
	VideoPath string `json:"video_path,omitempty"`
	Script    string `json:"script"`
}

type Config struct {
	PollInterval    time.Duration
	PollMaxAttempts int
	PreviewRunes    int
	AvatarMaxSide   int
	LockTTL         time.Duration
}

type PipelineDeps struct {
	Log     *logger.Logger
	Arts    ArtStore
	TTS     tts.Synthesizer
	Video   VideoGenerator
	Fetch   Fetcher
	Store   MediaStore
	Avatars *AvatarResolver
	Locker  runlock.Locker
	Now     func() time.Time
}

type Pipeline struct {
	log     *logger.Logger
	arts    ArtStore
	tts     tts.Synthesizer
	video   VideoGenerator
	fetch   Fetcher
	store   MediaStore
	avatars *AvatarResolver
	locker  runlock.Locker
	now     func() time.Time
	cfg     Config
	poller  Poller
}

func NewPipeline(deps PipelineDeps, cfg Config) *Pipeline {
	if cfg.PreviewRunes <= 0 {
		cfg.PreviewRunes = 80
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 15 * time.Minute
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	locker := deps.Locker
	if locker == nil {
		locker = runlock.NewLocal()
	}
	avatars := deps.Avatars
	if avatars == nil {
		avatars = NewAvatarResolver(deps.Log, deps.Store, deps.Fetch)
	}
	return &Pipeline{
		log:     deps.Log.With("service", "DocentPipeline"),
		arts:    deps.Arts,
		tts:     deps.TTS,
		video:   deps.Video,
		fetch:   deps.Fetch,
		store:   deps.Store,
		avatars: avatars,
		locker:  locker,
		now:     now,
		cfg:     cfg,
		poller:  Poller{Interval: cfg.PollInterval, MaxAttempts: cfg.PollMaxAttempts},
	}
}

func NormalizeMode(mode string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeAudio:
		return ModeAudio, nil
	case ModeVideo:
		return ModeVideo, nil
	default:
		return "", apierr.BadRequest("mode must be %q or %q", ModeAudio, ModeVideo)
	}
}

func LockKey(artID uint) string { return fmt.Sprintf("docent:lock:%d", artID) }

// Run executes one generation. Nothing is persisted unless every step succeeds.
func (p *Pipeline) Run(ctx context.Context, req Request, onStage StageFunc) (*Result, error) {
	mode, err := NormalizeMode(req.Mode)
	if err != nil {
		return nil, err
	}
	if onStage == nil {
		onStage = func(Stage, int) {}
	}
	ctx, span := observability.StartSpan(ctx, "docent.run",
		attribute.Int64("art_id", int64(req.ArtID)),
		attribute.String("mode", mode),
	)
	defer span.End()

	res, err := p.run(ctx, req, mode, onStage)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.log.Warn("Docent run failed", "art_id", req.ArtID, "mode", mode, "error", err)
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, req Request, mode string, onStage StageFunc) (*Result, error) {
	lease, err := p.locker.Acquire(ctx, LockKey(req.ArtID), p.cfg.LockTTL)
	if errors.Is(err, runlock.ErrHeld) {
		return nil, apierr.Conflict("docent generation already running for art %d", req.ArtID)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire docent lock: %w", err)
	}
	defer func() {
		if rerr := lease.Release(context.WithoutCancel(ctx)); rerr != nil {
			p.log.Warn("Docent lock release failed", "art_id", req.ArtID, "error", rerr)
		}
	}()

	art, err := p.arts.GetByID(dbctx.New(ctx), req.ArtID)
	if err != nil {
		return nil, fmt.Errorf("load art %d: %w", req.ArtID, err)
	}
	if art == nil {
		return nil, apierr.NotFound("art %d not found", req.ArtID)
	}

	script, err := ResolveScript(art, req.Script)
	if err != nil {
		return nil, err
	}
	onStage(StageScriptResolved, 10)

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = art.Title
	}
	base := MediaBaseName(art.ID, displayName, p.now().Unix())

	audio, audioPath, err := p.synthesize(ctx, script, base)
	if err != nil {
		return nil, err
	}
	onStage(StageAudioSynthesized, 30)

	res := &Result{Mode: mode, AudioPath: audioPath, Script: script}
	if mode == ModeAudio {
		if err := p.arts.RecordDocent(dbctx.New(ctx), art.ID, types.DocentRecord{
			AudioPath: &audioPath,
			Script:    &script,
		}); err != nil {
			return nil, err
		}
		onStage(StageDone, 100)
		p.log.Info("Docent audio generated", "art_id", art.ID, "audio_path", audioPath)
		return res, nil
	}

	imageRel, err := p.avatars.Resolve(ctx, art, req.AvatarImage)
	if err != nil {
		return nil, err
	}
	onStage(StageImageResolved, 40)

	imageID, audioID, err := p.uploadAssets(ctx, imageRel, audio, base)
	if err != nil {
		return nil, err
	}
	onStage(StageAssetsUploaded, 55)

	jobID, err := p.video.CreateGeneration(ctx, videogen.GenerationInput{
		ImageAssetID: imageID,
		AudioAssetID: audioID,
		TextPrompt:   BuildPrompt(script, p.cfg.PreviewRunes),
	})
	if err != nil {
		return nil, err
	}
	onStage(StageJobSubmitted, 60)
	p.log.Info("Docent video submitted", "art_id", art.ID, "generation_id", jobID)

	artifactURL, err := p.poll(ctx, jobID, onStage)
	if err != nil {
		return nil, err
	}

	videoPath, err := p.download(ctx, artifactURL, base)
	if err != nil {
		return nil, err
	}
	onStage(StageDownloaded, 95)

	if err := p.arts.RecordDocent(dbctx.New(ctx), art.ID, types.DocentRecord{
		AudioPath: &audioPath,
		VideoPath: &videoPath,
		Script:    &script,
	}); err != nil {
		return nil, err
	}
	res.VideoPath = videoPath
	onStage(StageDone, 100)
	p.log.Info("Docent video generated", "art_id", art.ID, "video_path", videoPath)
	return res, nil
}

func (p *Pipeline) synthesize(ctx context.Context, script, base string) ([]byte, string, error) {
	ctx, span := observability.StartSpan(ctx, "docent.synthesize", attribute.Int("script_runes", len([]rune(script))))
	defer span.End()

	audio, err := p.tts.Synthesize(ctx, script)
	if err != nil {
		return nil, "", err
	}
	rel := AudioPath(base)
	if err := p.store.Write(ctx, rel, bytes.NewReader(audio)); err != nil {
		return nil, "", err
	}
	if err := p.store.Publish(ctx, rel); err != nil {
		return nil, "", err
	}
	return audio, rel, nil
}

// uploadAssets uploads the image, then the audio.
func (p *Pipeline) uploadAssets(ctx context.Context, imageRel string, audio []byte, base string) (string, string, error) {
	ctx, span := observability.StartSpan(ctx, "docent.upload_assets")
	defer span.End()

	abs, err := p.store.Abs(imageRel)
	if err != nil {
		return "", "", err
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return "", "", fmt.Errorf("read avatar image: %w", err)
	}
	imageName := base + path.Ext(imageRel)
	if normalized, ok, err := NormalizeImage(raw, p.cfg.AvatarMaxSide); err != nil {
		return "", "", err
	} else if ok {
		raw = normalized
		imageName = base + ".jpg"
	}

	imageID, err := p.video.UploadFile(ctx, imageName, videogen.AssetImage, bytes.NewReader(raw))
	if err != nil {
		return "", "", err
	}
	audioID, err := p.video.UploadFile(ctx, base+".mp3", videogen.AssetAudio, bytes.NewReader(audio))
	if err != nil {
		return "", "", err
	}
	return imageID, audioID, nil
}

func (p *Pipeline) poll(ctx context.Context, jobID string, onStage StageFunc) (string, error) {
	ctx, span := observability.StartSpan(ctx, "docent.poll", attribute.String("generation_id", jobID))
	defer span.End()

	maxAttempts := p.poller.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultPollMaxAttempts
	}
	return p.poller.Wait(ctx, p.video, jobID, func(attempt int, status string) {
		span.AddEvent("poll", trace.WithAttributes(
			attribute.Int("attempt", attempt),
			attribute.String("status", status),
		))
		onStage(StagePolling, 65+attempt*25/maxAttempts)
	})
}

func (p *Pipeline) download(ctx context.Context, artifactURL, base string) (string, error) {
	ctx, span := observability.StartSpan(ctx, "docent.download")
	defer span.End()

	body, _, err := p.fetch.Open(ctx, artifactURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	rel := VideoPath(base)
	if err := p.store.Write(ctx, rel, body); err != nil {
		return "", err
	}
	if err := p.store.Publish(ctx, rel); err != nil {
		return "", err
	}
	return rel, nil
}
