package exhibit

import (
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

type ExhibitionRepo interface {
	Create(dbc dbctx.Context, e *types.Exhibition) (*types.Exhibition, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Exhibition, error)
	List(dbc dbctx.Context) ([]*types.Exhibition, error)
	ListByGallery(dbc dbctx.Context, galleryID uint) ([]*types.Exhibition, error)
	SetPosterPath(dbc dbctx.Context, id uint, path string) error
	AddLikes(dbc dbctx.Context, id uint, delta int) (int, error)
}

type exhibitionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExhibitionRepo(db *gorm.DB, baseLog *logger.Logger) ExhibitionRepo {
	return &exhibitionRepo{db: db, log: baseLog.With("repo", "ExhibitionRepo")}
}

func (r *exhibitionRepo) Create(dbc dbctx.Context, e *types.Exhibition) (*types.Exhibition, error) {
	if err := dbc.DB(r.db).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (r *exhibitionRepo) GetByID(dbc dbctx.Context, id uint) (*types.Exhibition, error) {
	if id == 0 {
		return nil, nil
	}
	var out types.Exhibition
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *exhibitionRepo) List(dbc dbctx.Context) ([]*types.Exhibition, error) {
	var out []*types.Exhibition
	if err := dbc.DB(r.db).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *exhibitionRepo) ListByGallery(dbc dbctx.Context, galleryID uint) ([]*types.Exhibition, error) {
	var out []*types.Exhibition
	if err := dbc.DB(r.db).
		Where("gallery_id = ?", galleryID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *exhibitionRepo) SetPosterPath(dbc dbctx.Context, id uint, path string) error {
	return dbc.DB(r.db).Model(&types.Exhibition{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"poster_path": path, "updated_at": time.Now().UTC()}).Error
}

// AddLikes adjusts like_count by delta (never below zero) and returns the new value.
func (r *exhibitionRepo) AddLikes(dbc dbctx.Context, id uint, delta int) (int, error) {
	tx := dbc.DB(r.db)
	expr := gorm.Expr("like_count + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN like_count + ? < 0 THEN 0 ELSE like_count + ? END", delta, delta)
	}
	if err := tx.Model(&types.Exhibition{}).
		Where("id = ?", id).
		Update("like_count", expr).Error; err != nil {
		return 0, err
	}
	var count int
	if err := tx.Model(&types.Exhibition{}).
		Where("id = ?", id).
		Pluck("like_count", &count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
