package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/artspace-backend/internal/data/repos"
	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/modules/docent"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/ctxutil"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

type DocentRunner interface {
	Run(ctx context.Context, req docent.Request, onStage docent.StageFunc) (*docent.Result, error)
}

type MediaURLs interface {
	PublicURL(rel string) string
}

type GenerateDocentInput struct {
	Mode        string `json:"mode"`
	Script      string `json:"script,omitempty"`
	AvatarImage string `json:"avatar_image,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

type DocentOutput struct {
	Mode     string `json:"mode,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	Script   string `json:"script,omitempty"`
}

type DocentService interface {
	Generate(ctx context.Context, artID uint, in GenerateDocentInput) (*DocentOutput, error)
	Enqueue(dbc dbctx.Context, artID uint, in GenerateDocentInput) (*types.JobRun, error)
	Get(dbc dbctx.Context, artID uint) (*DocentOutput, error)
}

type docentService struct {
	db     *gorm.DB
	log    *logger.Logger
	arts   repos.ArtRepo
	runner DocentRunner
	jobs   JobService
	urls   MediaURLs
}

func NewDocentService(db *gorm.DB, baseLog *logger.Logger, arts repos.ArtRepo, runner DocentRunner, jobs JobService, urls MediaURLs) DocentService {
	return &docentService{
		db:     db,
		log:    baseLog.With("service", "DocentService"),
		arts:   arts,
		runner: runner,
		jobs:   jobs,
		urls:   urls,
	}
}

// Generate runs the pipeline inline and blocks until it finishes.
func (s *docentService) Generate(ctx context.Context, artID uint, in GenerateDocentInput) (*DocentOutput, error) {
	res, err := s.runner.Run(ctx, docent.Request{
		ArtID:       artID,
		Mode:        in.Mode,
		Script:      in.Script,
		AvatarImage: in.AvatarImage,
		DisplayName: in.DisplayName,
	}, nil)
	if err != nil {
		return nil, err
	}
	out := &DocentOutput{Mode: res.Mode, AudioURL: s.url(res.AudioPath), Script: res.Script}
	if res.VideoPath != "" {
		out.VideoURL = s.url(res.VideoPath)
	}
	return out, nil
}

// Enqueue schedules a background docent_generate job. A second request while
// one is queued or running for the same art is a conflict.
func (s *docentService) Enqueue(dbc dbctx.Context, artID uint, in GenerateDocentInput) (*types.JobRun, error) {
	mode, err := docent.NormalizeMode(in.Mode)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"art_id": artID,
		"mode":   mode,
	}
	if in.Script != "" {
		payload["script"] = in.Script
	}
	if v := strings.TrimSpace(in.AvatarImage); v != "" {
		payload["avatar_image"] = v
	}
	if v := strings.TrimSpace(in.DisplayName); v != "" {
		payload["display_name"] = v
	}

	// The art row lock serializes concurrent enqueues for the same art, so
	// the runnable check and the insert see each other.
	var job *types.JobRun
	err = dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		art, err := s.arts.GetByIDForUpdate(txc, artID)
		if err != nil {
			return err
		}
		if art == nil {
			return apierr.NotFound("art %d not found", artID)
		}
		busy, err := s.jobs.HasRunnable(txc, types.JobTypeDocentGenerate, types.EntityTypeArt, artID)
		if err != nil {
			return err
		}
		if busy {
			return apierr.Conflict("docent generation already queued for art %d", artID)
		}
		job, err = s.jobs.Enqueue(txc, ctxutil.GetCaller(dbc.Ctx), types.JobTypeDocentGenerate, types.EntityTypeArt, &artID, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *docentService) Get(dbc dbctx.Context, artID uint) (*DocentOutput, error) {
	art, err := s.arts.GetByID(dbc, artID)
	if err != nil {
		return nil, err
	}
	if art == nil {
		return nil, apierr.NotFound("art %d not found", artID)
	}
	out := &DocentOutput{}
	if art.DocentAudioPath != nil {
		out.AudioURL = s.url(*art.DocentAudioPath)
	}
	if art.DocentVideoPath != nil {
		out.VideoURL = s.url(*art.DocentVideoPath)
		out.Mode = docent.ModeVideo
	} else if out.AudioURL != "" {
		out.Mode = docent.ModeAudio
	}
	if art.DocentScript != nil {
		out.Script = *art.DocentScript
	}
	return out, nil
}

func (s *docentService) url(rel string) string {
	if strings.TrimSpace(rel) == "" {
		return ""
	}
	return s.urls.PublicURL(rel)
}
