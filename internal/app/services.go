package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/artspace-backend/internal/jobs/pipeline/docent_generate"
	jobruntime "github.com/yungbote/artspace-backend/internal/jobs/runtime"
	"github.com/yungbote/artspace-backend/internal/jobs/worker"
	"github.com/yungbote/artspace-backend/internal/modules/docent"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Gallery    services.GalleryService
	Exhibition services.ExhibitionService
	Art        services.ArtService
	JobService services.JobService

	// Nil when the corresponding clients are not configured.
	Docent    services.DocentService
	AIContent services.AIContentService

	// Job infra
	JobRegistry *jobruntime.Registry
	JobWorker   *worker.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	out := Services{
		Auth:       services.NewAuthService(log, cfg.JWTSecretKey),
		Gallery:    services.NewGalleryService(db, log, reposet.Gallery),
		Exhibition: services.NewExhibitionService(db, log, reposet.Gallery, reposet.Exhibition, reposet.ExhibitionLike),
		Art:        services.NewArtService(db, log, reposet.Art, reposet.Exhibition, clients.Media),
		JobService: services.NewJobService(db, log, reposet.JobRun),
	}

	registry := jobruntime.NewRegistry()
	if clients.DocentEnabled() {
		pipeline := docent.NewPipeline(docent.PipelineDeps{
			Log:    log,
			Arts:   reposet.Art,
			TTS:    clients.TTS,
			Video:  clients.VideoGen,
			Fetch:  clients.Downloader,
			Store:  clients.Media,
			Locker: clients.Locker,
		}, cfg.Docent)
		out.Docent = services.NewDocentService(db, log, reposet.Art, pipeline, out.JobService, clients.Media)
		if err := registry.Register(docent_generate.New(log, pipeline, clients.Media)); err != nil {
			return Services{}, fmt.Errorf("register docent_generate: %w", err)
		}
	} else {
		log.Warn("TTS or video generation not configured; docent routes disabled")
	}

	if clients.OpenAI != nil {
		ai, err := services.NewAIContentService(db, log, clients.OpenAI, reposet.Gallery, reposet.Exhibition, clients.Media, cfg.PosterFont)
		if err != nil {
			return Services{}, fmt.Errorf("init ai content service: %w", err)
		}
		out.AIContent = ai
	} else {
		log.Warn("OPENAI_API_KEY not set; AI content routes disabled")
	}

	out.JobRegistry = registry
	out.JobWorker = worker.NewWorker(db, log, reposet.JobRun, registry, cfg.Worker)
	log.Info("Job handlers registered", "types", registry.Types())
	return out, nil
}
