package docent

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"strings"

	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"

	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

// Fetcher streams a remote resource.
type Fetcher interface {
	Open(ctx context.Context, rawURL string) (io.ReadCloser, string, error)
}

// MediaStore is the subset of the local media store the pipeline needs.
type MediaStore interface {
	Exists(rel string) bool
	Abs(rel string) (string, error)
	Write(ctx context.Context, rel string, r io.Reader) error
	Publish(ctx context.Context, rel string) error
	PublicURL(rel string) string
}

type AvatarResolver struct {
	log   *logger.Logger
	store MediaStore
	fetch Fetcher
	group singleflight.Group
}

func NewAvatarResolver(log *logger.Logger, store MediaStore, fetch Fetcher) *AvatarResolver {
	return &AvatarResolver{
		log:   log.With("component", "AvatarResolver"),
		store: store,
		fetch: fetch,
	}
}

// Resolve returns the media-relative path of the image to animate. Candidates,
// in order: an explicit http(s) URL (downloaded once into the avatar cache),
// an explicit path under the media root, the art's own image.
func (r *AvatarResolver) Resolve(ctx context.Context, art *types.Art, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if isRemote(ref) {
		return r.cacheRemote(ctx, ref)
	}
	if ref != "" {
		if _, err := r.store.Abs(ref); err != nil {
			return "", err
		}
		if r.store.Exists(ref) {
			return ref, nil
		}
		r.log.Warn("Explicit avatar image missing, falling back", "path", ref)
	}
	if art != nil {
		img := strings.TrimSpace(art.ImagePath)
		if isRemote(img) {
			return r.cacheRemote(ctx, img)
		}
		if img != "" && r.store.Exists(img) {
			return img, nil
		}
	}
	return "", apierr.NotFound("no avatar image available")
}

// cacheRemote downloads rawURL into its hash-derived cache path unless it is
// already there. Concurrent callers for the same URL share one download.
func (r *AvatarResolver) cacheRemote(ctx context.Context, rawURL string) (string, error) {
	rel := AvatarCachePath(rawURL)
	if r.store.Exists(rel) {
		return rel, nil
	}
	_, err, _ := r.group.Do(rel, func() (interface{}, error) {
		if r.store.Exists(rel) {
			return nil, nil
		}
		body, _, err := r.fetch.Open(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		if err := r.store.Write(ctx, rel, body); err != nil {
			return nil, err
		}
		r.log.Debug("Cached avatar image", "path", rel)
		return nil, nil
	})
	if err != nil {
		return "", err
	}
	return rel, nil
}

func isRemote(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// NormalizeImage re-encodes raw as JPEG with the longest side capped at
// maxSide. Images that cannot be decoded are returned unchanged.
func NormalizeImage(raw []byte, maxSide int) ([]byte, bool, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return raw, false, nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, false, apierr.Validation("avatar image is empty")
	}
	if maxSide > 0 && (w > maxSide || h > maxSide) {
		if w >= h {
			h = h * maxSide / w
			w = maxSide
		} else {
			w = w * maxSide / h
			h = maxSide
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, false, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), true, nil
}
