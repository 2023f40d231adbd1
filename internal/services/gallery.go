package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/artspace-backend/internal/data/repos"
	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

type CreateGalleryInput struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
	ImagePath   string `json:"image_path"`
}

type GalleryService interface {
	Create(dbc dbctx.Context, in CreateGalleryInput) (*types.Gallery, error)
	Get(dbc dbctx.Context, id uint) (*types.Gallery, error)
	List(dbc dbctx.Context) ([]*types.Gallery, error)
}

type galleryService struct {
	db        *gorm.DB
	log       *logger.Logger
	galleries repos.GalleryRepo
}

func NewGalleryService(db *gorm.DB, baseLog *logger.Logger, galleries repos.GalleryRepo) GalleryService {
	return &galleryService{db: db, log: baseLog.With("service", "GalleryService"), galleries: galleries}
}

func (s *galleryService) Create(dbc dbctx.Context, in CreateGalleryInput) (*types.Gallery, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.BadRequest("name is required")
	}
	g, err := s.galleries.Create(dbc, &types.Gallery{
		Name:        name,
		Address:     strings.TrimSpace(in.Address),
		Description: strings.TrimSpace(in.Description),
		ImagePath:   strings.TrimSpace(in.ImagePath),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Gallery created", "gallery_id", g.ID)
	return g, nil
}

func (s *galleryService) Get(dbc dbctx.Context, id uint) (*types.Gallery, error) {
	g, err := s.galleries.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, apierr.NotFound("gallery %d not found", id)
	}
	return g, nil
}

func (s *galleryService) List(dbc dbctx.Context) ([]*types.Gallery, error) {
	return s.galleries.List(dbc)
}
