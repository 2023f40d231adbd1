package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/artspace-backend/internal/platform/gcp"
	"github.com/yungbote/artspace-backend/internal/platform/httpx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/platform/mediastore"
	"github.com/yungbote/artspace-backend/internal/platform/openai"
	"github.com/yungbote/artspace-backend/internal/platform/runlock"
	"github.com/yungbote/artspace-backend/internal/platform/tts"
	"github.com/yungbote/artspace-backend/internal/platform/videogen"
)

// Clients holds the outbound integrations. TTS and VideoGen are nil when
// their keys are missing, which disables docent generation; OpenAI is nil
// without OPENAI_API_KEY, which disables the AI content routes.
type Clients struct {
	Media      *mediastore.Store
	Bucket     gcp.BucketService
	Downloader *httpx.Downloader
	TTS        *tts.Client
	VideoGen   *videogen.Client
	OpenAI     openai.Client
	Locker     runlock.Locker
	redis      *runlock.RedisLocker
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	media, bucket, err := wireMediaStore(ctx, log, cfg)
	if err != nil {
		return Clients{}, err
	}
	out := Clients{
		Media:      media,
		Bucket:     bucket,
		Downloader: httpx.NewDownloader(cfg.DownloadTimeout, cfg.DownloadMaxBytes),
		Locker:     runlock.NewLocal(),
	}

	// Redis
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		rl, err := runlock.NewRedisLocker(log, addr, "artspace:")
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init redis locker: %w", err)
		}
		out.redis = rl
		out.Locker = rl
	} else {
		log.Warn("REDIS_ADDR not set; docent run locks are process-local")
	}

	// TTS + video generation
	if cfg.TTS.Enabled() {
		c, err := tts.NewClient(ctx, log, cfg.TTS)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init tts client: %w", err)
		}
		out.TTS = c
	}
	if strings.TrimSpace(cfg.VideoGen.APIKey) != "" {
		c, err := videogen.NewClient(log, cfg.VideoGen)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init videogen client: %w", err)
		}
		out.VideoGen = c
	}

	// OpenAI
	if strings.TrimSpace(cfg.OpenAI.APIKey) != "" {
		c, err := openai.NewClient(log, cfg.OpenAI)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init openai client: %w", err)
		}
		out.OpenAI = c
	}
	return out, nil
}

func (c *Clients) DocentEnabled() bool {
	return c != nil && c.TTS != nil && c.VideoGen != nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.TTS != nil {
		_ = c.TTS.Close()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
}
