package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/artspace-backend/internal/data/repos"
	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/modules/docent"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

const MaxArtImageBytes = 10 << 20

// MediaWriter stores and publishes files under the media root.
type MediaWriter interface {
	WriteBytes(ctx context.Context, rel string, b []byte) error
	Publish(ctx context.Context, rel string) error
	PublicURL(rel string) string
}

type CreateArtInput struct {
	ExhibitionID uint   `json:"exhibition_id"`
	ArtistName   string `json:"artist_name"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	DocentText   string `json:"docent_text"`
}

// ArtView is an art row with its media paths resolved to public URLs.
type ArtView struct {
	*types.Art
	ImageURL       string `json:"image_url,omitempty"`
	DocentAudioURL string `json:"docent_audio_url,omitempty"`
	DocentVideoURL string `json:"docent_video_url,omitempty"`
}

type ArtService interface {
	Create(dbc dbctx.Context, in CreateArtInput) (*ArtView, error)
	Get(dbc dbctx.Context, id uint) (*ArtView, error)
	ListByExhibition(dbc dbctx.Context, exhibitionID uint) ([]*ArtView, error)
	UploadImage(dbc dbctx.Context, id uint, r io.Reader) (*ArtView, error)
}

type artService struct {
	db          *gorm.DB
	log         *logger.Logger
	arts        repos.ArtRepo
	exhibitions repos.ExhibitionRepo
	media       MediaWriter
	now         func() time.Time
}

func NewArtService(db *gorm.DB, baseLog *logger.Logger, arts repos.ArtRepo, exhibitions repos.ExhibitionRepo, media MediaWriter) ArtService {
	return &artService{
		db:          db,
		log:         baseLog.With("service", "ArtService"),
		arts:        arts,
		exhibitions: exhibitions,
		media:       media,
		now:         time.Now,
	}
}

func (s *artService) Create(dbc dbctx.Context, in CreateArtInput) (*ArtView, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.BadRequest("title is required")
	}
	e, err := s.exhibitions.GetByID(dbc, in.ExhibitionID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apierr.NotFound("exhibition %d not found", in.ExhibitionID)
	}
	a, err := s.arts.Create(dbc, &types.Art{
		ExhibitionID: e.ID,
		ArtistName:   strings.TrimSpace(in.ArtistName),
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		DocentText:   strings.TrimSpace(in.DocentText),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Art created", "art_id", a.ID, "exhibition_id", e.ID)
	return s.view(a), nil
}

func (s *artService) Get(dbc dbctx.Context, id uint) (*ArtView, error) {
	a, err := s.arts.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apierr.NotFound("art %d not found", id)
	}
	return s.view(a), nil
}

func (s *artService) ListByExhibition(dbc dbctx.Context, exhibitionID uint) ([]*ArtView, error) {
	e, err := s.exhibitions.GetByID(dbc, exhibitionID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apierr.NotFound("exhibition %d not found", exhibitionID)
	}
	list, err := s.arts.ListByExhibition(dbc, exhibitionID)
	if err != nil {
		return nil, err
	}
	out := make([]*ArtView, 0, len(list))
	for _, a := range list {
		out = append(out, s.view(a))
	}
	return out, nil
}

// UploadImage stores a jpg/png/webp of at most MaxArtImageBytes as the art's
// image. The type is sniffed from the content, not the file name.
func (s *artService) UploadImage(dbc dbctx.Context, id uint, r io.Reader) (*ArtView, error) {
	a, err := s.arts.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apierr.NotFound("art %d not found", id)
	}
	raw, err := io.ReadAll(io.LimitReader(r, MaxArtImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(raw) == 0 {
		return nil, apierr.BadRequest("file is empty")
	}
	if len(raw) > MaxArtImageBytes {
		return nil, apierr.BadRequest("file exceeds %d MB", MaxArtImageBytes>>20)
	}
	ext, ok := imageExt(http.DetectContentType(raw))
	if !ok {
		return nil, apierr.BadRequest("unsupported image type; use jpg, png or webp")
	}

	rel := docent.ArtImagePath(docent.MediaBaseName(a.ID, a.Title, s.now().Unix()), ext)
	if err := s.media.WriteBytes(dbc.Ctx, rel, raw); err != nil {
		return nil, err
	}
	if err := s.media.Publish(dbc.Ctx, rel); err != nil {
		return nil, err
	}
	if err := s.arts.SetImagePath(dbc, a.ID, rel); err != nil {
		return nil, err
	}
	a.ImagePath = rel
	s.log.Info("Art image stored", "art_id", a.ID, "path", rel, "bytes", len(raw))
	return s.view(a), nil
}

func imageExt(contentType string) (string, bool) {
	switch contentType {
	case "image/jpeg":
		return ".jpg", true
	case "image/png":
		return ".png", true
	case "image/webp":
		return ".webp", true
	default:
		return "", false
	}
}

func (s *artService) view(a *types.Art) *ArtView {
	v := &ArtView{Art: a}
	if p := strings.TrimSpace(a.ImagePath); p != "" {
		if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
			v.ImageURL = p
		} else {
			v.ImageURL = s.media.PublicURL(p)
		}
	}
	if a.DocentAudioPath != nil {
		v.DocentAudioURL = s.media.PublicURL(*a.DocentAudioPath)
	}
	if a.DocentVideoPath != nil {
		v.DocentVideoURL = s.media.PublicURL(*a.DocentVideoPath)
	}
	return v
}
