package docent

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/httpx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/platform/mediastore"
)

func newStore(t *testing.T) *mediastore.Store {
	t.Helper()
	s, err := mediastore.New(logger.Nop(), t.TempDir(), "https://api.test/media", nil)
	if err != nil {
		t.Fatalf("mediastore.New: %v", err)
	}
	return s
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func imageServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	body := pngBytes(t, 8, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		time.Sleep(10 * time.Millisecond)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAvatarURLDownloadedOnce(t *testing.T) {
	var hits int32
	srv := imageServer(t, &hits)
	store := newStore(t)
	r := NewAvatarResolver(logger.Nop(), store, httpx.NewDownloader(5*time.Second, 0))

	url := srv.URL + "/works/7.png"
	first, err := r.Resolve(context.Background(), &types.Art{ID: 7}, url)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := r.Resolve(context.Background(), &types.Art{ID: 7}, url)
	if err != nil {
		t.Fatalf("Resolve again: %v", err)
	}
	if first != second || first != AvatarCachePath(url) {
		t.Fatalf("unexpected cache paths %q %q", first, second)
	}
	if !store.Exists(first) {
		t.Fatalf("cached file missing")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected a single download, got %d", got)
	}

	// a fresh resolver (another run) reuses the cached file too
	other := NewAvatarResolver(logger.Nop(), store, httpx.NewDownloader(5*time.Second, 0))
	if _, err := other.Resolve(context.Background(), nil, url); err != nil {
		t.Fatalf("Resolve (other run): %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("cache not reused across runs, downloads=%d", got)
	}
}

func TestAvatarOversizedDownloadNotCached(t *testing.T) {
	var hits int32
	body := pngBytes(t, 64, 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/png")
		// no Content-Length; the cap has to trip mid-stream
		w.(http.Flusher).Flush()
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	store := newStore(t)
	limit := int64(len(body) / 4)
	r := NewAvatarResolver(logger.Nop(), store, httpx.NewDownloader(5*time.Second, limit))

	url := srv.URL + "/works/big.png"
	if _, err := r.Resolve(context.Background(), &types.Art{ID: 7}, url); !errors.Is(err, apierr.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
	if store.Exists(AvatarCachePath(url)) {
		t.Fatalf("truncated avatar must not be cached")
	}
	if _, err := r.Resolve(context.Background(), &types.Art{ID: 7}, url); err == nil {
		t.Fatalf("expected second attempt to fail as well")
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("failed download must not be remembered, downloads=%d", got)
	}
}

func TestAvatarConcurrentResolveConverges(t *testing.T) {
	var hits int32
	srv := imageServer(t, &hits)
	store := newStore(t)
	r := NewAvatarResolver(logger.Nop(), store, httpx.NewDownloader(5*time.Second, 0))
	url := srv.URL + "/shared.png"

	var wg sync.WaitGroup
	paths := make([]string, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = r.Resolve(context.Background(), nil, url)
		}(i)
	}
	wg.Wait()
	for i := range paths {
		if errs[i] != nil {
			t.Fatalf("Resolve[%d]: %v", i, errs[i])
		}
		if paths[i] != paths[0] {
			t.Fatalf("paths diverged: %v", paths)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected one download for concurrent callers, got %d", got)
	}
}

func TestAvatarLocalResolutionOrder(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	if err := store.WriteBytes(ctx, "art/7.png", pngBytes(t, 4, 4)); err != nil {
		t.Fatalf("seed art image: %v", err)
	}
	if err := store.WriteBytes(ctx, "uploads/custom.png", pngBytes(t, 4, 4)); err != nil {
		t.Fatalf("seed custom image: %v", err)
	}
	r := NewAvatarResolver(logger.Nop(), store, httpx.NewDownloader(time.Second, 0))
	art := &types.Art{ID: 7, ImagePath: "art/7.png"}

	if got, err := r.Resolve(ctx, art, "uploads/custom.png"); err != nil || got != "uploads/custom.png" {
		t.Fatalf("explicit path: got=%q err=%v", got, err)
	}
	if got, err := r.Resolve(ctx, art, "uploads/missing.png"); err != nil || got != "art/7.png" {
		t.Fatalf("fallback to art image: got=%q err=%v", got, err)
	}
	if got, err := r.Resolve(ctx, art, ""); err != nil || got != "art/7.png" {
		t.Fatalf("art image: got=%q err=%v", got, err)
	}
	if _, err := r.Resolve(ctx, &types.Art{ID: 8, ImagePath: "art/none.png"}, ""); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := r.Resolve(ctx, art, "../../etc/passwd"); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for traversal, got %v", err)
	}
}

func TestNormalizeImage(t *testing.T) {
	out, ok, err := NormalizeImage(pngBytes(t, 400, 200), 100)
	if err != nil || !ok {
		t.Fatalf("NormalizeImage: ok=%v err=%v", ok, err)
	}
	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode normalized: %v", err)
	}
	if format != "jpeg" || img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Fatalf("unexpected output %s %v", format, img.Bounds())
	}

	raw := []byte("not an image")
	out, ok, err = NormalizeImage(raw, 100)
	if err != nil || ok || !bytes.Equal(out, raw) {
		t.Fatalf("undecodable input should pass through unchanged")
	}
}
