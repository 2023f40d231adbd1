package repos

import (
	"github.com/yungbote/artspace-backend/internal/data/repos/exhibit"
	"github.com/yungbote/artspace-backend/internal/data/repos/jobs"
)

type GalleryRepo = exhibit.GalleryRepo
type ExhibitionRepo = exhibit.ExhibitionRepo
type ExhibitionLikeRepo = exhibit.ExhibitionLikeRepo
type ArtRepo = exhibit.ArtRepo

type JobRunRepo = jobs.JobRunRepo

var (
	NewGalleryRepo        = exhibit.NewGalleryRepo
	NewExhibitionRepo     = exhibit.NewExhibitionRepo
	NewExhibitionLikeRepo = exhibit.NewExhibitionLikeRepo
	NewArtRepo            = exhibit.NewArtRepo
	NewJobRunRepo         = jobs.NewJobRunRepo
)
