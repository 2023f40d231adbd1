package exhibit

import (
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

type GalleryRepo interface {
	Create(dbc dbctx.Context, g *types.Gallery) (*types.Gallery, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Gallery, error)
	List(dbc dbctx.Context) ([]*types.Gallery, error)
	FindIDsByName(dbc dbctx.Context, name string) ([]uint, error)
}

type galleryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGalleryRepo(db *gorm.DB, baseLog *logger.Logger) GalleryRepo {
	return &galleryRepo{db: db, log: baseLog.With("repo", "GalleryRepo")}
}

func (r *galleryRepo) Create(dbc dbctx.Context, g *types.Gallery) (*types.Gallery, error) {
	if err := dbc.DB(r.db).Create(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}

func (r *galleryRepo) GetByID(dbc dbctx.Context, id uint) (*types.Gallery, error) {
	if id == 0 {
		return nil, nil
	}
	var out types.Gallery
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *galleryRepo) List(dbc dbctx.Context) ([]*types.Gallery, error) {
	var out []*types.Gallery
	if err := dbc.DB(r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindIDsByName returns ids of galleries whose name contains name, case-insensitively.
func (r *galleryRepo) FindIDsByName(dbc dbctx.Context, name string) ([]uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []uint{}, nil
	}
	var ids []uint
	err := dbc.DB(r.db).Model(&types.Gallery{}).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(name))+"%").
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern escaped with '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
