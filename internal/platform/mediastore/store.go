package mediastore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

// Mirror receives published files so they can be served from object storage.
type Mirror interface {
	UploadFile(ctx context.Context, key string, file io.Reader) error
	GetPublicURL(key string) string
}

// Store keeps generated media under a local root. Paths handed in and out are
// always relative, slash-separated keys like "docent/mp3/7_1700000000.mp3".
type Store struct {
	log        *logger.Logger
	root       string
	publicBase string
	mirror     Mirror
}

func New(log *logger.Logger, root, publicBase string, mirror Mirror) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("media root required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Store{
		log:        log.With("service", "MediaStore"),
		root:       abs,
		publicBase: strings.TrimRight(strings.TrimSpace(publicBase), "/"),
		mirror:     mirror,
	}, nil
}

func (s *Store) Root() string { return s.root }

// Abs resolves rel against the media root. Keys that escape the root are rejected.
func (s *Store) Abs(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", apierr.BadRequest("empty media path")
	}
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(rel, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", apierr.BadRequest("media path escapes root: %q", rel)
	}
	return filepath.Join(s.root, clean), nil
}

// Exists reports whether rel names an existing regular file.
func (s *Store) Exists(rel string) bool {
	abs, err := s.Abs(rel)
	if err != nil {
		return false
	}
	st, err := os.Stat(abs)
	return err == nil && st.Mode().IsRegular()
}

// Write streams r into rel. The file appears atomically: readers never see a partial write.
func (s *Store) Write(ctx context.Context, rel string, r io.Reader) error {
	abs, err := s.Abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(abs), ".partial-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := io.Copy(tmp, contextReader{ctx: ctx, r: r}); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", rel, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		cleanup()
		return fmt.Errorf("finalize %s: %w", rel, err)
	}
	return nil
}

func (s *Store) WriteBytes(ctx context.Context, rel string, b []byte) error {
	return s.Write(ctx, rel, bytes.NewReader(b))
}

func (s *Store) Open(rel string) (*os.File, error) {
	abs, err := s.Abs(rel)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apierr.NotFound("media file not found: %s", rel)
	}
	return f, err
}

// Publish copies rel to the mirror, if one is configured.
func (s *Store) Publish(ctx context.Context, rel string) error {
	if s.mirror == nil {
		return nil
	}
	f, err := s.Open(rel)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := s.mirror.UploadFile(ctx, rel, f); err != nil {
		return apierr.External(err, "mirror %s", rel)
	}
	s.log.Debug("Published media", "path", rel)
	return nil
}

// PublicURL turns a stored relative path into a client-facing link.
func (s *Store) PublicURL(rel string) string {
	rel = strings.TrimLeft(strings.TrimSpace(rel), "/")
	if rel == "" {
		return ""
	}
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") {
		return rel
	}
	if s.mirror != nil {
		return s.mirror.GetPublicURL(rel)
	}
	if s.publicBase == "" {
		return "/" + rel
	}
	return s.publicBase + "/" + rel
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
