package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/artspace-backend/internal/data/repos"
	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/ctxutil"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

/*
Context is the execution handle for one claimed job_run.
Handlers never write job_run directly; lifecycle transitions go through
Progress, Fail and Succeed so terminal rows are never overwritten.
*/
type Context struct {
	Ctx     context.Context
	DB      *gorm.DB
	Job     *types.JobRun
	Repo    repos.JobRunRepo
	Log     *logger.Logger
	payload map[string]any
}

var terminalStatuses = []string{types.JobStatusSucceeded, types.JobStatusFailed}

func NewContext(ctx context.Context, db *gorm.DB, job *types.JobRun, repo repos.JobRunRepo, log *logger.Logger) *Context {
	c := &Context{
		Ctx:  ctx,
		DB:   db,
		Job:  job,
		Repo: repo,
		Log:  log,
	}
	if err := c.decodePayload(); err != nil && log != nil {
		log.Warn("Job payload decode failed", "job_id", job.ID, "error", err)
	}
	c.applyTraceData()
	return c
}

func (c *Context) decodePayload() error {
	if c.Job == nil {
		return nil
	}
	if len(c.Job.Payload) == 0 {
		c.payload = map[string]any{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(c.Job.Payload, &m); err != nil {
		c.payload = map[string]any{}
		return err
	}
	c.payload = m
	return nil
}

func (c *Context) applyTraceData() {
	if c.Ctx == nil {
		return
	}
	traceID := c.PayloadString("trace_id")
	reqID := c.PayloadString("request_id")
	if traceID == "" && reqID == "" {
		return
	}
	c.Ctx = ctxutil.WithTraceData(c.Ctx, &ctxutil.TraceData{TraceID: traceID, RequestID: reqID})
}

// Payload never returns nil.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

func (c *Context) PayloadString(key string) string {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// PayloadUint accepts JSON numbers and numeric strings.
func (c *Context) PayloadUint(key string) (uint, bool) {
	switch v := c.Payload()[key].(type) {
	case float64:
		if v <= 0 || v != math.Trunc(v) {
			return 0, false
		}
		return uint(v), true
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil || n == 0 {
			return 0, false
		}
		return uint(n), true
	default:
		return 0, false
	}
}

func (c *Context) ctx() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) persisted() bool {
	return c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil
}

// Progress records a non-terminal stage update and refreshes the heartbeat.
func (c *Context) Progress(stage string, pct int) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	if c.persisted() {
		ok, err := c.Repo.UpdateFieldsUnlessStatus(dbctx.New(c.ctx()), c.Job.ID, terminalStatuses, map[string]interface{}{
			"stage":        stage,
			"progress":     pct,
			"heartbeat_at": now,
			"updated_at":   now,
		})
		if err != nil && c.Log != nil {
			c.Log.Warn("Job progress update failed", "job_id", c.Job.ID, "stage", stage, "error", err)
		}
		if !ok {
			return
		}
	}
	if c.Job != nil {
		c.Job.Stage = stage
		c.Job.Progress = pct
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}
}

// Fail marks the run failed at stage. The caller's context may already be
// canceled, so the write uses a detached one.
func (c *Context) Fail(stage string, err error) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if c.persisted() {
		ok, uerr := c.Repo.UpdateFieldsUnlessStatus(dbctx.New(context.WithoutCancel(c.ctx())), c.Job.ID, terminalStatuses, map[string]interface{}{
			"status":        types.JobStatusFailed,
			"stage":         stage,
			"error":         msg,
			"last_error_at": now,
			"locked_at":     nil,
			"updated_at":    now,
		})
		if uerr != nil && c.Log != nil {
			c.Log.Error("Job fail update failed", "job_id", c.Job.ID, "error", uerr)
		}
		if !ok {
			return
		}
	}
	if c.Job != nil {
		c.Job.Status = types.JobStatusFailed
		c.Job.Stage = stage
		c.Job.Error = msg
		c.Job.LastErrorAt = &now
		c.Job.LockedAt = nil
		c.Job.UpdatedAt = now
	}
	if c.Log != nil && c.Job != nil {
		c.Log.Warn("Job failed", "job_id", c.Job.ID, "job_type", c.Job.JobType, "stage", stage, "error", msg)
	}
}

// Succeed stores result as JSON and marks the run succeeded at 100%.
func (c *Context) Succeed(finalStage string, result any) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	var res datatypes.JSON
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			c.Fail("encode_result", err)
			return
		}
		res = datatypes.JSON(b)
	}
	if c.persisted() {
		ok, err := c.Repo.UpdateFieldsUnlessStatus(dbctx.New(context.WithoutCancel(c.ctx())), c.Job.ID, terminalStatuses, map[string]interface{}{
			"status":       types.JobStatusSucceeded,
			"stage":        finalStage,
			"progress":     100,
			"error":        "",
			"result":       res,
			"locked_at":    nil,
			"heartbeat_at": now,
			"updated_at":   now,
		})
		if err != nil && c.Log != nil {
			c.Log.Error("Job succeed update failed", "job_id", c.Job.ID, "error", err)
		}
		if !ok {
			return
		}
	}
	if c.Job != nil {
		c.Job.Status = types.JobStatusSucceeded
		c.Job.Stage = finalStage
		c.Job.Progress = 100
		c.Job.Error = ""
		c.Job.Result = res
		c.Job.LockedAt = nil
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}
}
