package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/image/font"
	"gorm.io/gorm"

	"github.com/yungbote/artspace-backend/internal/data/repos"
	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/modules/docent"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/platform/openai"
	"github.com/yungbote/artspace-backend/internal/platform/promptstyle"
)

const maxChatMessageRunes = 2000

type AIContentService interface {
	Chat(ctx context.Context, message string) (string, error)
	Invitation(dbc dbctx.Context, exhibitionID uint) (string, error)
	Poster(dbc dbctx.Context, exhibitionID uint) (string, error)
}

type aiContentService struct {
	db          *gorm.DB
	log         *logger.Logger
	ai          openai.Client
	prompts     *promptstyle.Catalog
	galleries   repos.GalleryRepo
	exhibitions repos.ExhibitionRepo
	media       MediaWriter
	titleFace   font.Face
	now         func() time.Time
}

// NewAIContentService loads the poster title font when fontPath is set.
func NewAIContentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ai openai.Client,
	galleries repos.GalleryRepo,
	exhibitions repos.ExhibitionRepo,
	media MediaWriter,
	fontPath string,
) (AIContentService, error) {
	prompts, err := promptstyle.Load()
	if err != nil {
		return nil, err
	}
	var face font.Face
	if fontPath = strings.TrimSpace(fontPath); fontPath != "" {
		face, err = loadFontFace(fontPath, posterTitleSize)
		if err != nil {
			return nil, err
		}
	}
	return &aiContentService{
		db:          db,
		log:         baseLog.With("service", "AIContentService"),
		ai:          ai,
		prompts:     prompts,
		galleries:   galleries,
		exhibitions: exhibitions,
		media:       media,
		titleFace:   face,
		now:         time.Now,
	}, nil
}

func (s *aiContentService) Chat(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apierr.BadRequest("message is required")
	}
	if len([]rune(message)) > maxChatMessageRunes {
		return "", apierr.BadRequest("message exceeds %d characters", maxChatMessageRunes)
	}
	return s.complete(ctx, promptstyle.GuideChat, map[string]string{"Message": message})
}

func (s *aiContentService) Invitation(dbc dbctx.Context, exhibitionID uint) (string, error) {
	e, g, err := s.load(dbc, exhibitionID)
	if err != nil {
		return "", err
	}
	vars := map[string]string{
		"Title":       e.Title,
		"Dates":       formatDates(e.StartDate, e.EndDate),
		"Description": e.Description,
	}
	if g != nil {
		vars["Gallery"] = g.Name
		vars["Address"] = g.Address
	}
	return s.complete(dbc.Ctx, promptstyle.Invitation, vars)
}

// Poster generates an image for the exhibition, stores it as PNG and records
// its path. Returns the public URL.
func (s *aiContentService) Poster(dbc dbctx.Context, exhibitionID uint) (string, error) {
	e, g, err := s.load(dbc, exhibitionID)
	if err != nil {
		return "", err
	}
	p, err := s.prompts.Get(promptstyle.Poster)
	if err != nil {
		return "", err
	}
	vars := map[string]string{"Title": e.Title, "Description": e.Description}
	if g != nil {
		vars["Gallery"] = g.Name
	}
	prompt, err := p.Render(vars)
	if err != nil {
		return "", err
	}
	gen, err := s.ai.GenerateImage(dbc.Ctx, prompt)
	if err != nil {
		return "", err
	}
	png, err := renderPoster(gen.Bytes, e.Title, s.titleFace)
	if err != nil {
		return "", apierr.External(err, "poster image unusable")
	}

	rel := docent.PosterPath(docent.MediaBaseName(e.ID, e.Title, s.now().Unix()))
	if err := s.media.WriteBytes(dbc.Ctx, rel, png); err != nil {
		return "", err
	}
	if err := s.media.Publish(dbc.Ctx, rel); err != nil {
		return "", err
	}
	if err := s.exhibitions.SetPosterPath(dbc, e.ID, rel); err != nil {
		return "", err
	}
	s.log.Info("Poster generated", "exhibition_id", e.ID, "path", rel, "overlay", s.titleFace != nil)
	return s.media.PublicURL(rel), nil
}

func (s *aiContentService) complete(ctx context.Context, name string, vars map[string]string) (string, error) {
	p, err := s.prompts.Get(name)
	if err != nil {
		return "", err
	}
	user, err := p.Render(vars)
	if err != nil {
		return "", err
	}
	out, err := s.ai.GenerateText(ctx, p.System, user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (s *aiContentService) load(dbc dbctx.Context, exhibitionID uint) (*types.Exhibition, *types.Gallery, error) {
	e, err := s.exhibitions.GetByID(dbc, exhibitionID)
	if err != nil {
		return nil, nil, err
	}
	if e == nil {
		return nil, nil, apierr.NotFound("exhibition %d not found", exhibitionID)
	}
	g, err := s.galleries.GetByID(dbc, e.GalleryID)
	if err != nil {
		return nil, nil, err
	}
	return e, g, nil
}

func formatDates(start, end *time.Time) string {
	const layout = "2006-01-02"
	switch {
	case start != nil && end != nil:
		return start.Format(layout) + " ~ " + end.Format(layout)
	case start != nil:
		return "from " + start.Format(layout)
	case end != nil:
		return "until " + end.Format(layout)
	default:
		return "to be announced"
	}
}
