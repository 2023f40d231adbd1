package testutil

import (
	"context"
	"testing"
	"time"

	types "github.com/yungbote/artspace-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedGallery(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Gallery {
	tb.Helper()
	g := &types.Gallery{Name: name, Address: "Seoul"}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed gallery: %v", err)
	}
	return g
}

func SeedExhibition(tb testing.TB, ctx context.Context, tx *gorm.DB, galleryID uint, title string, createdAt time.Time, endDate *time.Time, likes int) *types.Exhibition {
	tb.Helper()
	e := &types.Exhibition{
		GalleryID: galleryID,
		Title:     title,
		EndDate:   endDate,
		LikeCount: likes,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed exhibition: %v", err)
	}
	return e
}

func SeedArt(tb testing.TB, ctx context.Context, tx *gorm.DB, art *types.Art) *types.Art {
	tb.Helper()
	if art.Title == "" {
		art.Title = "Untitled"
	}
	if err := tx.WithContext(ctx).Create(art).Error; err != nil {
		tb.Fatalf("seed art: %v", err)
	}
	return art
}
