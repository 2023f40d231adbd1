package worker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/datatypes"

	jobrepo "github.com/yungbote/artspace-backend/internal/data/repos/jobs"
	"github.com/yungbote/artspace-backend/internal/data/repos/testutil"
	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/jobs/runtime"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
)

type funcHandler struct {
	typ string
	run func(jc *runtime.Context) error
}

func (h funcHandler) Type() string { return h.typ }
func (h funcHandler) Run(jc *runtime.Context) error { return h.run(jc) }

func enqueue(t *testing.T, repo jobrepo.JobRunRepo, jobType string) *types.JobRun {
	t.Helper()
	job := &types.JobRun{
		JobType: jobType,
		Status:  types.JobStatusQueued,
		Stage:   "queued",
		Payload: datatypes.JSON([]byte(`{"art_id":7}`)),
	}
	if _, err := repo.Create(dbctx.New(context.Background()), []*types.JobRun{job}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return job
}

func reload(t *testing.T, repo jobrepo.JobRunRepo, job *types.JobRun) *types.JobRun {
	t.Helper()
	got, err := repo.GetByID(dbctx.New(context.Background()), job.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	return got
}

func TestRunOnceDispatchesToHandler(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := jobrepo.NewJobRunRepo(db, log)
	reg := runtime.NewRegistry()
	if err := reg.Register(funcHandler{typ: "echo", run: func(jc *runtime.Context) error {
		id, ok := jc.PayloadUint("art_id")
		if !ok {
			return errors.New("missing art_id")
		}
		jc.Progress("working", 50)
		jc.Succeed("done", map[string]any{"art_id": id})
		return nil
	}}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	w := NewWorker(db, log, repo, reg, Config{})
	job := enqueue(t, repo, "echo")

	claimed, err := w.RunOnce(context.Background())
	if err != nil || !claimed {
		t.Fatalf("RunOnce: claimed=%v err=%v", claimed, err)
	}
	got := reload(t, repo, job)
	if got.Status != types.JobStatusSucceeded || got.Progress != 100 || got.Attempts != 1 {
		t.Fatalf("unexpected job state: %+v", got)
	}
	if !strings.Contains(string(got.Result), `"art_id":7`) {
		t.Fatalf("result = %s", got.Result)
	}

	claimed, err = w.RunOnce(context.Background())
	if err != nil || claimed {
		t.Fatalf("expected empty queue, claimed=%v err=%v", claimed, err)
	}
}

func TestRunOnceFailures(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := jobrepo.NewJobRunRepo(db, log)
	reg := runtime.NewRegistry()
	_ = reg.Register(funcHandler{typ: "boom", run: func(*runtime.Context) error { panic("kaboom") }})
	_ = reg.Register(funcHandler{typ: "err", run: func(*runtime.Context) error { return errors.New("upstream down") }})
	w := NewWorker(db, log, repo, reg, Config{MaxAttempts: 1})

	cases := []struct {
		jobType   string
		wantStage string
		wantErr   string
	}{
		{"missing", "dispatch", "no handler registered"},
		{"boom", "panic", "kaboom"},
		{"err", "run", "upstream down"},
	}
	for _, tc := range cases {
		job := enqueue(t, repo, tc.jobType)
		if _, err := w.RunOnce(context.Background()); err != nil {
			t.Fatalf("%s: RunOnce: %v", tc.jobType, err)
		}
		got := reload(t, repo, job)
		if got.Status != types.JobStatusFailed || got.Stage != tc.wantStage || !strings.Contains(got.Error, tc.wantErr) {
			t.Fatalf("%s: unexpected job state: status=%s stage=%s error=%q", tc.jobType, got.Status, got.Stage, got.Error)
		}
	}

	// attempts are exhausted, so nothing is retried
	if claimed, err := w.RunOnce(context.Background()); err != nil || claimed {
		t.Fatalf("failed jobs must not be retried with MaxAttempts=1, claimed=%v err=%v", claimed, err)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := runtime.NewRegistry()
	h := funcHandler{typ: "x", run: func(*runtime.Context) error { return nil }}
	if err := reg.Register(h); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register(h); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := reg.Register(funcHandler{}); err == nil {
		t.Fatalf("expected empty type error")
	}
	if got := reg.Types(); len(got) != 1 || got[0] != "x" {
		t.Fatalf("Types = %v", got)
	}
}
