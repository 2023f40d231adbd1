package docent

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/httpx"
	"github.com/yungbote/artspace-backend/internal/platform/videogen"
)

const (
	DefaultPollInterval    = 5 * time.Second
	DefaultPollMaxAttempts = 20
)

type StatusGetter interface {
	GetStatus(ctx context.Context, jobID string) (videogen.JobStatus, error)
}

type Poller struct {
	Interval    time.Duration
	MaxAttempts int
	// Sleep defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Wait polls jobID until it reaches a terminal state and returns the artifact
// URL. It makes at most MaxAttempts status calls and sleeps only between them.
func (p Poller) Wait(ctx context.Context, src StatusGetter, jobID string, onPoll func(attempt int, status string)) (string, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultPollMaxAttempts
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = httpx.Sleep
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		st, err := src.GetStatus(ctx, jobID)
		if err != nil {
			return "", err
		}
		if onPoll != nil {
			onPoll(attempt, st.Status)
		}
		switch st.Status {
		case videogen.StatusComplete:
			u := st.ArtifactURL()
			if u == "" {
				return "", apierr.External(nil, "generation %s complete without artifact url", jobID)
			}
			return u, nil
		case videogen.StatusError:
			msg := strings.TrimSpace(st.ErrorMessage)
			if msg == "" {
				msg = "unknown error"
			}
			return "", apierr.External(nil, "video generation failed: %s", msg)
		}
		if attempt < maxAttempts {
			if err := sleep(ctx, p.Interval); err != nil {
				return "", err
			}
		}
	}
	return "", apierr.Timeout("video generation %s not finished after %d polls", jobID, maxAttempts)
}
