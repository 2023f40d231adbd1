package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/artspace-backend/internal/data/repos"
	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/ctxutil"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

type JobService interface {
	Enqueue(dbc dbctx.Context, ownerID string, jobType string, entityType string, entityID *uint, payload map[string]any) (*types.JobRun, error)
	HasRunnable(dbc dbctx.Context, jobType string, entityType string, entityID uint) (bool, error)
	GetByIDForCaller(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error)
}

type jobService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.JobRunRepo
}

func NewJobService(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo) JobService {
	return &jobService{
		db:   db,
		log:  baseLog.With("service", "JobService"),
		repo: repo,
	}
}

// Enqueue stores a queued job_run. Trace ids of the request are copied into
// the payload so worker logs can be correlated.
func (s *jobService) Enqueue(dbc dbctx.Context, ownerID string, jobType string, entityType string, entityID *uint, payload map[string]any) (*types.JobRun, error) {
	if strings.TrimSpace(jobType) == "" {
		return nil, fmt.Errorf("missing job_type")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if td := ctxutil.GetTraceData(dbc.Ctx); td != nil {
		if _, ok := payload["trace_id"]; !ok && td.TraceID != "" {
			payload["trace_id"] = td.TraceID
		}
		if _, ok := payload["request_id"]; !ok && td.RequestID != "" {
			payload["request_id"] = td.RequestID
		}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode job payload: %w", err)
	}

	now := time.Now().UTC()
	job := &types.JobRun{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		JobType:    jobType,
		EntityType: entityType,
		EntityID:   entityID,
		Status:     types.JobStatusQueued,
		Stage:      "queued",
		Payload:    datatypes.JSON(b),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.repo.Create(dbc, []*types.JobRun{job}); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.log.Info("Job enqueued", "job_id", job.ID, "job_type", jobType, "entity_type", entityType, "owner_id", ownerID)
	return job, nil
}

func (s *jobService) HasRunnable(dbc dbctx.Context, jobType string, entityType string, entityID uint) (bool, error) {
	return s.repo.ExistsRunnable(dbc, jobType, entityType, entityID)
}

// GetByIDForCaller hides jobs owned by another caller.
func (s *jobService) GetByIDForCaller(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error) {
	job, err := s.repo.GetByID(dbc, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apierr.NotFound("job %s not found", jobID)
	}
	if caller := ctxutil.GetCaller(dbc.Ctx); caller != "" && job.OwnerID != "" && job.OwnerID != caller {
		return nil, apierr.NotFound("job %s not found", jobID)
	}
	return job, nil
}
