package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/artspace-backend/internal/data/repos"
	"github.com/yungbote/artspace-backend/internal/data/repos/testutil"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/platform/mediastore"
)

type testEnv struct {
	db          *gorm.DB
	log         *logger.Logger
	galleries   repos.GalleryRepo
	exhibitions repos.ExhibitionRepo
	likes       repos.ExhibitionLikeRepo
	arts        repos.ArtRepo
	jobRuns     repos.JobRunRepo
	media       *mediastore.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	store, err := mediastore.New(log, t.TempDir(), "https://api.test/media", nil)
	if err != nil {
		t.Fatalf("mediastore.New: %v", err)
	}
	return &testEnv{
		db:          db,
		log:         log,
		galleries:   repos.NewGalleryRepo(db, log),
		exhibitions: repos.NewExhibitionRepo(db, log),
		likes:       repos.NewExhibitionLikeRepo(db, log),
		arts:        repos.NewArtRepo(db, log),
		jobRuns:     repos.NewJobRunRepo(db, log),
		media:       store,
	}
}

func fixedNow() time.Time { return time.Unix(1700000000, 0) }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func ctxBG() context.Context { return context.Background() }
