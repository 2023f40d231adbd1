package httpx

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yungbote/artspace-backend/internal/platform/apierr"
)

const maxErrorBody = 64 << 10

// UpstreamError is a non-2xx answer from a third-party API. The raw body is
// kept for server-side logging and is not part of Error().
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: upstream returned status %d", e.Service, e.StatusCode)
}

func (e *UpstreamError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (e *UpstreamError) Is(target error) bool {
	return target == apierr.ErrExternalService
}

// ReadUpstreamError drains resp.Body into an UpstreamError. The caller still closes the body.
func ReadUpstreamError(service string, resp *http.Response) *UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &UpstreamError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
