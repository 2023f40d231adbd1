package exhibitions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/artspace-backend/internal/data/repos/exhibit"
	"github.com/yungbote/artspace-backend/internal/data/repos/testutil"
	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
)

func at(day int) time.Time { return time.Date(2025, 5, day, 0, 0, 0, 0, time.UTC) }

func ptr(t time.Time) *time.Time { return &t }

func titles(list []*types.Exhibition) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.Title)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortExhibitions(t *testing.T) {
	build := func() []*types.Exhibition {
		return []*types.Exhibition{
			{Title: "a", CreatedAt: at(1), EndDate: ptr(at(20)), LikeCount: 5},
			{Title: "b", CreatedAt: at(3), EndDate: nil, LikeCount: 9},
			{Title: "c", CreatedAt: at(2), EndDate: ptr(at(10)), LikeCount: 1},
		}
	}
	cases := []struct {
		policy string
		want   []string
	}{
		{"latest", []string{"b", "c", "a"}},
		{"", []string{"b", "c", "a"}},
		{"bogus", []string{"b", "c", "a"}},
		{"ending", []string{"c", "a", "b"}},
		{"POPULAR", []string{"b", "a", "c"}},
	}
	for _, tc := range cases {
		list := build()
		SortExhibitions(list, tc.policy)
		if got := titles(list); !equal(got, tc.want) {
			t.Fatalf("policy %q: got %v want %v", tc.policy, got, tc.want)
		}
	}
}

func TestParseNames(t *testing.T) {
	got := ParseNames(" Seoul , ,Busan,")
	if !equal(got, []string{"Seoul", "Busan"}) {
		t.Fatalf("ParseNames = %v", got)
	}
	if len(ParseNames("  ")) != 0 {
		t.Fatalf("blank filter should parse to nothing")
	}
}

func TestListByGalleryNamesMergesAndDedupes(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)

	seoul := testutil.SeedGallery(t, ctx, db, "Seoul Modern")
	busan := testutil.SeedGallery(t, ctx, db, "Busan Modern")
	other := testutil.SeedGallery(t, ctx, db, "Jeju Stone")

	testutil.SeedExhibition(t, ctx, db, seoul.ID, "seoul-old", at(1), ptr(at(25)), 3)
	testutil.SeedExhibition(t, ctx, db, seoul.ID, "seoul-new", at(9), ptr(at(12)), 10)
	testutil.SeedExhibition(t, ctx, db, busan.ID, "busan", at(5), nil, 7)
	testutil.SeedExhibition(t, ctx, db, other.ID, "jeju", at(7), ptr(at(8)), 100)

	q := NewQuery(log, exhibit.NewGalleryRepo(db, log), exhibit.NewExhibitionRepo(db, log))

	// "modern" and "seoul" both match the Seoul gallery; it must be fetched once.
	list, err := q.ListByGalleryNames(ctx, []string{"modern", "seoul"}, SortLatest)
	if err != nil {
		t.Fatalf("ListByGalleryNames: %v", err)
	}
	if got := titles(list); !equal(got, []string{"seoul-new", "busan", "seoul-old"}) {
		t.Fatalf("latest: %v", got)
	}

	list, err = q.ListByGalleryNames(ctx, []string{"Seoul", "Busan"}, SortEnding)
	if err != nil {
		t.Fatalf("ListByGalleryNames: %v", err)
	}
	if got := titles(list); !equal(got, []string{"seoul-new", "seoul-old", "busan"}) {
		t.Fatalf("ending: %v", got)
	}

	list, err = q.ListByGalleryNames(ctx, []string{"busan", "seoul"}, SortPopular)
	if err != nil {
		t.Fatalf("ListByGalleryNames: %v", err)
	}
	if got := titles(list); !equal(got, []string{"seoul-new", "busan", "seoul-old"}) {
		t.Fatalf("popular: %v", got)
	}
}

func TestListByGalleryNamesNoMatchIsNotFound(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	testutil.SeedGallery(t, ctx, db, "Seoul Modern")

	q := NewQuery(log, exhibit.NewGalleryRepo(db, log), exhibit.NewExhibitionRepo(db, log))
	list, err := q.ListByGalleryNames(ctx, []string{"atlantis"}, SortLatest)
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not found, got %v (list=%v)", err, list)
	}
}
