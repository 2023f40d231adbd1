package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/yungbote/artspace-backend/internal/platform/gcp"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

type stubBucket struct{}

func (stubBucket) UploadFile(context.Context, string, io.Reader) error { return nil }
func (stubBucket) DeleteFile(context.Context, string) error { return nil }
func (stubBucket) GetPublicURL(key string) string { return "https://cdn.test/" + key }
func (stubBucket) Close() error { return nil }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func withBucketFactory(t *testing.T, fn func(context.Context, *logger.Logger, gcp.BucketConfig) (gcp.BucketService, error)) {
	t.Helper()
	prev := newBucketService
	newBucketService = fn
	t.Cleanup(func() { newBucketService = prev })
}

func TestResolveMediaMirrorDisabledWithoutBucket(t *testing.T) {
	withBucketFactory(t, func(context.Context, *logger.Logger, gcp.BucketConfig) (gcp.BucketService, error) {
		t.Fatalf("bucket factory must not be called")
		return nil, nil
	})
	bucket, err := resolveMediaMirror(context.Background(), testLogger(t), Config{})
	if err != nil || bucket != nil {
		t.Fatalf("got bucket=%v err=%v, want nil/nil", bucket, err)
	}
}

func TestResolveMediaMirrorInvalidEmulatorHost(t *testing.T) {
	withBucketFactory(t, func(context.Context, *logger.Logger, gcp.BucketConfig) (gcp.BucketService, error) {
		t.Fatalf("bucket factory must not be called")
		return nil, nil
	})
	_, err := resolveMediaMirror(context.Background(), testLogger(t), Config{MediaBucket: "media", StorageEmulator: "fake-gcs:4443"})

	var got *StorageProviderBootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
	}
	if got.Code != StorageProviderBootstrapErrorInvalidEmulatorHost {
		t.Fatalf("code: want=%q got=%q", StorageProviderBootstrapErrorInvalidEmulatorHost, got.Code)
	}
}

func TestResolveMediaMirrorConnectFailed(t *testing.T) {
	cause := errors.New("dial failed")
	withBucketFactory(t, func(context.Context, *logger.Logger, gcp.BucketConfig) (gcp.BucketService, error) {
		return nil, cause
	})
	_, err := resolveMediaMirror(context.Background(), testLogger(t), Config{MediaBucket: "media"})

	var got *StorageProviderBootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
	}
	if got.Code != StorageProviderBootstrapErrorConnectFailed || !errors.Is(err, cause) {
		t.Fatalf("got %+v", got)
	}
}

func TestWireMediaStoreUsesMirrorURLs(t *testing.T) {
	var seen gcp.BucketConfig
	withBucketFactory(t, func(_ context.Context, _ *logger.Logger, cfg gcp.BucketConfig) (gcp.BucketService, error) {
		seen = cfg
		return stubBucket{}, nil
	})
	cfg := Config{
		MediaRoot:       t.TempDir(),
		MediaBucket:     " media ",
		StorageEmulator: "http://localhost:4443",
	}
	store, bucket, err := wireMediaStore(context.Background(), testLogger(t), cfg)
	if err != nil {
		t.Fatalf("wireMediaStore: %v", err)
	}
	if bucket == nil || seen.Bucket != "media" || seen.EmulatorHost != "http://localhost:4443" {
		t.Fatalf("bucket=%v cfg=%+v", bucket, seen)
	}
	if got := store.PublicURL("docent/mp3/a.mp3"); got != "https://cdn.test/docent/mp3/a.mp3" {
		t.Fatalf("public url = %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.test, ,https://b.test ")
	if len(got) != 2 || got[0] != "https://a.test" || got[1] != "https://b.test" {
		t.Fatalf("splitList = %v", got)
	}
	if splitList("") != nil {
		t.Fatalf("empty input must give nil")
	}
}
