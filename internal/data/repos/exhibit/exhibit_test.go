package exhibit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/artspace-backend/internal/data/repos/testutil"
	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
)

func strPtr(s string) *string { return &s }

func TestGalleryFindIDsByName(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewGalleryRepo(db, testutil.Logger(t))

	a := testutil.SeedGallery(t, ctx, db, "Seoul Modern Gallery")
	b := testutil.SeedGallery(t, ctx, db, "Busan Modern Art")
	testutil.SeedGallery(t, ctx, db, "Daegu Photo House")

	ids, err := repo.FindIDsByName(dbctx.New(ctx), "modern")
	if err != nil {
		t.Fatalf("FindIDsByName: %v", err)
	}
	if len(ids) != 2 || ids[0] != a.ID || ids[1] != b.ID {
		t.Fatalf("unexpected ids: %v", ids)
	}
	ids, err = repo.FindIDsByName(dbctx.New(ctx), "nowhere")
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected no ids, got %v err=%v", ids, err)
	}
}

func TestGalleryFindIDsByNameMatchesWildcardsLiterally(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewGalleryRepo(db, testutil.Logger(t))

	testutil.SeedGallery(t, ctx, db, "Seoul Modern Gallery")
	testutil.SeedGallery(t, ctx, db, "Busan Art")
	testutil.SeedGallery(t, ctx, db, "axb house")
	pct := testutil.SeedGallery(t, ctx, db, "100% Art")
	under := testutil.SeedGallery(t, ctx, db, "a_b studio")
	slash := testutil.SeedGallery(t, ctx, db, `back\slash`)

	cases := []struct {
		query string
		want  []uint
	}{
		{"%", []uint{pct.ID}},
		{"a_b", []uint{under.ID}},
		{"_", []uint{under.ID}},
		{`\`, []uint{slash.ID}},
		{"100%", []uint{pct.ID}},
		{"%%", nil},
	}
	for _, tc := range cases {
		ids, err := repo.FindIDsByName(dbctx.New(ctx), tc.query)
		if err != nil {
			t.Fatalf("FindIDsByName(%q): %v", tc.query, err)
		}
		if len(ids) != len(tc.want) {
			t.Fatalf("FindIDsByName(%q) = %v, want %v", tc.query, ids, tc.want)
		}
		for i := range ids {
			if ids[i] != tc.want[i] {
				t.Fatalf("FindIDsByName(%q) = %v, want %v", tc.query, ids, tc.want)
			}
		}
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_a\b`); got != `50\%\_a\\b` {
		t.Fatalf("escapeLike = %q", got)
	}
}

func TestExhibitionAddLikesNeverNegative(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewExhibitionRepo(db, testutil.Logger(t))
	g := testutil.SeedGallery(t, ctx, db, "G")
	e := testutil.SeedExhibition(t, ctx, db, g.ID, "E", time.Now().UTC(), nil, 0)

	n, err := repo.AddLikes(dbctx.New(ctx), e.ID, 1)
	if err != nil || n != 1 {
		t.Fatalf("AddLikes(+1): n=%d err=%v", n, err)
	}
	n, err = repo.AddLikes(dbctx.New(ctx), e.ID, -5)
	if err != nil || n != 0 {
		t.Fatalf("AddLikes(-5): n=%d err=%v", n, err)
	}
}

func TestArtRecordDocentPartialUpdate(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.New(ctx)
	repo := NewArtRepo(db, testutil.Logger(t))
	art := testutil.SeedArt(t, ctx, db, &types.Art{ExhibitionID: 1, Title: "Starry Night"})

	rec, err := repo.GetDocent(dbc, art.ID)
	if err != nil || rec == nil {
		t.Fatalf("GetDocent: rec=%v err=%v", rec, err)
	}
	if rec.AudioPath != nil || rec.VideoPath != nil || rec.Script != nil {
		t.Fatalf("docent columns should start null: %+v", rec)
	}

	if err := repo.RecordDocent(dbc, art.ID, types.DocentRecord{
		AudioPath: strPtr("docent/mp3/a.mp3"),
		VideoPath: strPtr("docent/video/a.mp4"),
		Script:    strPtr("first"),
	}); err != nil {
		t.Fatalf("RecordDocent(video): %v", err)
	}
	// audio-only run keeps the previous video
	if err := repo.RecordDocent(dbc, art.ID, types.DocentRecord{
		AudioPath: strPtr("docent/mp3/b.mp3"),
		Script:    strPtr("second"),
	}); err != nil {
		t.Fatalf("RecordDocent(audio): %v", err)
	}

	rec, err = repo.GetDocent(dbc, art.ID)
	if err != nil {
		t.Fatalf("GetDocent: %v", err)
	}
	if *rec.AudioPath != "docent/mp3/b.mp3" || *rec.VideoPath != "docent/video/a.mp4" || *rec.Script != "second" {
		t.Fatalf("unexpected record: audio=%s video=%s script=%s", *rec.AudioPath, *rec.VideoPath, *rec.Script)
	}
}

func TestArtRecordDocentErrors(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	repo := NewArtRepo(db, testutil.Logger(t))

	err := repo.RecordDocent(dbc, 404, types.DocentRecord{AudioPath: strPtr("x.mp3")})
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	err = repo.RecordDocent(dbc, 1, types.DocentRecord{VideoPath: strPtr("x.mp4")})
	if !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("expected validation error for unpaired video, got %v", err)
	}
	if rec, err := repo.GetDocent(dbc, 404); err != nil || rec != nil {
		t.Fatalf("GetDocent(missing): rec=%v err=%v", rec, err)
	}
}
