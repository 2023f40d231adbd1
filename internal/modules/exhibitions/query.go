package exhibitions

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

const (
	SortLatest  = "latest"
	SortEnding  = "ending"
	SortPopular = "popular"
)

const fetchConcurrency = 4

type GalleryFinder interface {
	FindIDsByName(dbc dbctx.Context, name string) ([]uint, error)
}

type ExhibitionLister interface {
	ListByGallery(dbc dbctx.Context, galleryID uint) ([]*types.Exhibition, error)
}

type Query struct {
	log         *logger.Logger
	galleries   GalleryFinder
	exhibitions ExhibitionLister
}

func NewQuery(log *logger.Logger, galleries GalleryFinder, exhibitions ExhibitionLister) *Query {
	return &Query{
		log:         log.With("component", "ExhibitionQuery"),
		galleries:   galleries,
		exhibitions: exhibitions,
	}
}

// NormalizeSort maps unknown or empty policies to SortLatest.
func NormalizeSort(policy string) string {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case SortEnding:
		return SortEnding
	case SortPopular:
		return SortPopular
	default:
		return SortLatest
	}
}

// ParseNames splits a comma separated gallery_name filter.
func ParseNames(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ListByGalleryNames resolves every name to gallery ids, fetches each gallery's
// exhibitions and sorts the merged list once. A filter that matches no gallery
// is a NotFound error, not an empty list.
func (q *Query) ListByGalleryNames(ctx context.Context, names []string, policy string) ([]*types.Exhibition, error) {
	ids, err := q.resolveIDs(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apierr.NotFound("no gallery matches %q", strings.Join(names, ","))
	}

	perGallery := make([][]*types.Exhibition, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			list, err := q.exhibitions.ListByGallery(dbctx.New(gctx), id)
			if err != nil {
				return err
			}
			perGallery[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]*types.Exhibition, 0)
	for _, list := range perGallery {
		merged = append(merged, list...)
	}
	SortExhibitions(merged, policy)
	q.log.Debug("Exhibitions listed by gallery names", "names", len(names), "gallery_ids", len(ids), "count", len(merged))
	return merged, nil
}

// resolveIDs keeps first-seen order and drops duplicate gallery ids.
func (q *Query) resolveIDs(ctx context.Context, names []string) ([]uint, error) {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, name := range names {
		found, err := q.galleries.FindIDsByName(dbctx.New(ctx), name)
		if err != nil {
			return nil, err
		}
		for _, id := range found {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// SortExhibitions orders list in place. ending puts the soonest end date first
// (open-ended exhibitions last), popular the most liked first, latest the
// newest first.
func SortExhibitions(list []*types.Exhibition, policy string) {
	switch NormalizeSort(policy) {
	case SortEnding:
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i].EndDate, list[j].EndDate
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return a.Before(*b)
			}
		})
	case SortPopular:
		sort.SliceStable(list, func(i, j int) bool { return list[i].LikeCount > list[j].LikeCount })
	default:
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	}
}
