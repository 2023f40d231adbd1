package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/artspace-backend/internal/data/repos"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

type Repos struct {
	Gallery        repos.GalleryRepo
	Exhibition     repos.ExhibitionRepo
	ExhibitionLike repos.ExhibitionLikeRepo
	Art            repos.ArtRepo
	JobRun         repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Gallery:        repos.NewGalleryRepo(db, log),
		Exhibition:     repos.NewExhibitionRepo(db, log),
		ExhibitionLike: repos.NewExhibitionLikeRepo(db, log),
		Art:            repos.NewArtRepo(db, log),
		JobRun:         repos.NewJobRunRepo(db, log),
	}
}
