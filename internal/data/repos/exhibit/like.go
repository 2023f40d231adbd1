package exhibit

import (
	"gorm.io/gorm"

	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

type ExhibitionLikeRepo interface {
	Exists(dbc dbctx.Context, userID string, exhibitionID uint) (bool, error)
	Create(dbc dbctx.Context, userID string, exhibitionID uint) error
	Delete(dbc dbctx.Context, userID string, exhibitionID uint) (bool, error)
}

type exhibitionLikeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExhibitionLikeRepo(db *gorm.DB, baseLog *logger.Logger) ExhibitionLikeRepo {
	return &exhibitionLikeRepo{db: db, log: baseLog.With("repo", "ExhibitionLikeRepo")}
}

func (r *exhibitionLikeRepo) Exists(dbc dbctx.Context, userID string, exhibitionID uint) (bool, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.ExhibitionLike{}).
		Where("user_id = ? AND exhibition_id = ?", userID, exhibitionID).
		Count(&count).Error
	return count > 0, err
}

func (r *exhibitionLikeRepo) Create(dbc dbctx.Context, userID string, exhibitionID uint) error {
	return dbc.DB(r.db).Create(&types.ExhibitionLike{UserID: userID, ExhibitionID: exhibitionID}).Error
}

func (r *exhibitionLikeRepo) Delete(dbc dbctx.Context, userID string, exhibitionID uint) (bool, error) {
	res := dbc.DB(r.db).
		Where("user_id = ? AND exhibition_id = ?", userID, exhibitionID).
		Delete(&types.ExhibitionLike{})
	return res.RowsAffected > 0, res.Error
}
