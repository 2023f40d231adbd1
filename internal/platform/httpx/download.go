package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/artspace-backend/internal/platform/apierr"
)

// Downloader fetches arbitrary URLs (avatar sources, generated artifacts).
type Downloader struct {
	client   *http.Client
	maxBytes int64
}

func NewDownloader(timeout time.Duration, maxBytes int64) *Downloader {
	return &Downloader{client: NewClient(timeout), maxBytes: maxBytes}
}

// cappedBody fails the read, rather than truncating, once more than max
// bytes have arrived.
type cappedBody struct {
	r    io.Reader
	c    io.Closer
	max  int64
	read int64
	url  string
}

func (b *cappedBody) Read(p []byte) (int, error) {
	if b.read > b.max {
		return 0, tooLarge(b.url, b.max)
	}
	n, err := b.r.Read(p)
	b.read += int64(n)
	if b.read > b.max {
		return n - int(b.read-b.max), tooLarge(b.url, b.max)
	}
	return n, err
}

func (b *cappedBody) Close() error { return b.c.Close() }

func tooLarge(rawURL string, max int64) error {
	return apierr.External(nil, "download %s exceeds %d bytes", redactQuery(rawURL), max)
}

// Open starts a GET request and returns the streaming body and its content type.
func (d *Downloader) Open(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, "", apierr.BadRequest("download url must be http(s): %q", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", apierr.External(err, "download %s", redactQuery(rawURL))
	}
	if !IsSuccess(resp.StatusCode) {
		defer resp.Body.Close()
		return nil, "", ReadUpstreamError("download", resp)
	}
	body := io.ReadCloser(resp.Body)
	if d.maxBytes > 0 {
		if resp.ContentLength > d.maxBytes {
			_ = resp.Body.Close()
			return nil, "", tooLarge(rawURL, d.maxBytes)
		}
		body = &cappedBody{
			r:   io.LimitReader(resp.Body, d.maxBytes+1),
			c:   resp.Body,
			max: d.maxBytes,
			url: rawURL,
		}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func redactQuery(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}
