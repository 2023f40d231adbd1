package exhibit

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

type ArtRepo interface {
	Create(dbc dbctx.Context, a *types.Art) (*types.Art, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Art, error)
	GetByIDForUpdate(dbc dbctx.Context, id uint) (*types.Art, error)
	ListByExhibition(dbc dbctx.Context, exhibitionID uint) ([]*types.Art, error)
	SetImagePath(dbc dbctx.Context, id uint, path string) error
	RecordDocent(dbc dbctx.Context, id uint, rec types.DocentRecord) error
	GetDocent(dbc dbctx.Context, id uint) (*types.DocentRecord, error)
}

type artRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArtRepo(db *gorm.DB, baseLog *logger.Logger) ArtRepo {
	return &artRepo{db: db, log: baseLog.With("repo", "ArtRepo")}
}

func (r *artRepo) Create(dbc dbctx.Context, a *types.Art) (*types.Art, error) {
	if err := dbc.DB(r.db).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *artRepo) GetByID(dbc dbctx.Context, id uint) (*types.Art, error) {
	if id == 0 {
		return nil, nil
	}
	var out types.Art
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

// GetByIDForUpdate is GetByID holding a row lock until dbc.Tx ends.
func (r *artRepo) GetByIDForUpdate(dbc dbctx.Context, id uint) (*types.Art, error) {
	if id == 0 {
		return nil, nil
	}
	var out types.Art
	err := dbc.DB(r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).Limit(1).Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *artRepo) ListByExhibition(dbc dbctx.Context, exhibitionID uint) ([]*types.Art, error) {
	var out []*types.Art
	if err := dbc.DB(r.db).
		Where("exhibition_id = ?", exhibitionID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *artRepo) SetImagePath(dbc dbctx.Context, id uint, path string) error {
	res := dbc.DB(r.db).Model(&types.Art{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"image_path": path, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierr.NotFound("art %d not found", id)
	}
	return nil
}

// RecordDocent writes only the non-nil fields of rec in a single UPDATE;
// omitted fields keep their stored values.
func (r *artRepo) RecordDocent(dbc dbctx.Context, id uint, rec types.DocentRecord) error {
	if rec.VideoPath != nil && rec.AudioPath == nil {
		return apierr.Validation("docent video requires paired audio")
	}
	updates := map[string]interface{}{}
	if rec.AudioPath != nil {
		updates["docent_audio_path"] = *rec.AudioPath
	}
	if rec.VideoPath != nil {
		updates["docent_video_path"] = *rec.VideoPath
	}
	if rec.Script != nil {
		updates["docent_script"] = *rec.Script
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()

	res := dbc.DB(r.db).Model(&types.Art{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierr.NotFound("art %d not found", id)
	}
	return nil
}

// GetDocent returns nil when the art does not exist.
func (r *artRepo) GetDocent(dbc dbctx.Context, id uint) (*types.DocentRecord, error) {
	art, err := r.GetByID(dbc, id)
	if err != nil || art == nil {
		return nil, err
	}
	return &types.DocentRecord{
		AudioPath: art.DocentAudioPath,
		VideoPath: art.DocentVideoPath,
		Script:    art.DocentScript,
	}, nil
}
