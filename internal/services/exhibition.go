package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/artspace-backend/internal/data/repos"
	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/modules/exhibitions"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/ctxutil"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

type CreateExhibitionInput struct {
	GalleryID   uint       `json:"gallery_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	ImagePath   string     `json:"image_path"`
}

type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type ExhibitionService interface {
	Create(dbc dbctx.Context, in CreateExhibitionInput) (*types.Exhibition, error)
	Get(dbc dbctx.Context, id uint) (*types.Exhibition, error)
	List(ctx context.Context, galleryNames string, sort string) ([]*types.Exhibition, error)
	ToggleLike(dbc dbctx.Context, exhibitionID uint) (*LikeResult, error)
}

type exhibitionService struct {
	db          *gorm.DB
	log         *logger.Logger
	galleries   repos.GalleryRepo
	exhibitions repos.ExhibitionRepo
	likes       repos.ExhibitionLikeRepo
	query       *exhibitions.Query
}

func NewExhibitionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	galleries repos.GalleryRepo,
	exhibitionRepo repos.ExhibitionRepo,
	likes repos.ExhibitionLikeRepo,
) ExhibitionService {
	serviceLog := baseLog.With("service", "ExhibitionService")
	return &exhibitionService{
		db:          db,
		log:         serviceLog,
		galleries:   galleries,
		exhibitions: exhibitionRepo,
		likes:       likes,
		query:       exhibitions.NewQuery(serviceLog, galleries, exhibitionRepo),
	}
}

func (s *exhibitionService) Create(dbc dbctx.Context, in CreateExhibitionInput) (*types.Exhibition, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.BadRequest("title is required")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, apierr.BadRequest("end_date is before start_date")
	}
	g, err := s.galleries.GetByID(dbc, in.GalleryID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, apierr.NotFound("gallery %d not found", in.GalleryID)
	}
	e, err := s.exhibitions.Create(dbc, &types.Exhibition{
		GalleryID:   g.ID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		ImagePath:   strings.TrimSpace(in.ImagePath),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Exhibition created", "exhibition_id", e.ID, "gallery_id", g.ID)
	return e, nil
}

func (s *exhibitionService) Get(dbc dbctx.Context, id uint) (*types.Exhibition, error) {
	e, err := s.exhibitions.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apierr.NotFound("exhibition %d not found", id)
	}
	return e, nil
}

// List returns every exhibition, or only those of the galleries matching the
// comma separated galleryNames. Both paths share the same sort policies.
func (s *exhibitionService) List(ctx context.Context, galleryNames string, sort string) ([]*types.Exhibition, error) {
	if names := exhibitions.ParseNames(galleryNames); len(names) > 0 {
		return s.query.ListByGalleryNames(ctx, names, sort)
	}
	list, err := s.exhibitions.List(dbctx.New(ctx))
	if err != nil {
		return nil, err
	}
	exhibitions.SortExhibitions(list, sort)
	return list, nil
}

// ToggleLike flips the caller's like and keeps like_count in step inside one
// transaction.
func (s *exhibitionService) ToggleLike(dbc dbctx.Context, exhibitionID uint) (*LikeResult, error) {
	userID := ctxutil.GetCaller(dbc.Ctx)
	if userID == "" {
		return nil, apierr.BadRequest("caller identity required")
	}
	var out LikeResult
	err := dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		e, err := s.exhibitions.GetByID(txc, exhibitionID)
		if err != nil {
			return err
		}
		if e == nil {
			return apierr.NotFound("exhibition %d not found", exhibitionID)
		}
		removed, err := s.likes.Delete(txc, userID, exhibitionID)
		if err != nil {
			return err
		}
		delta := -1
		if !removed {
			if err := s.likes.Create(txc, userID, exhibitionID); err != nil {
				return err
			}
			delta = 1
		}
		count, err := s.exhibitions.AddLikes(txc, exhibitionID, delta)
		if err != nil {
			return err
		}
		out = LikeResult{Liked: !removed, LikeCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("Exhibition like toggled", "exhibition_id", exhibitionID, "user_id", userID, "liked", out.Liked)
	return &out, nil
}
