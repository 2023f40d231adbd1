package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/artspace-backend/internal/data/repos/testutil"
	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
)

func ptrTime(t time.Time) *time.Time { return &t }
func ptrUint(v uint) *uint          { return &v }

func TestJobRunRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()

	queued := &types.JobRun{
		JobType:    "docent_generate",
		EntityType: "art",
		EntityID:   ptrUint(7),
		Status:     types.JobStatusQueued,
		Stage:      "queued",
		Payload:    datatypes.JSON([]byte(`{"art_id":7}`)),
		CreatedAt:  now.Add(-3 * time.Hour),
		UpdatedAt:  now.Add(-3 * time.Hour),
	}
	failed := &types.JobRun{
		JobType:     "docent_generate",
		EntityType:  "art",
		EntityID:    ptrUint(8),
		Status:      types.JobStatusFailed,
		Stage:       "failed",
		Attempts:    1,
		LastErrorAt: ptrTime(now.Add(-2 * time.Hour)),
		CreatedAt:   now.Add(-2 * time.Hour),
		UpdatedAt:   now.Add(-2 * time.Hour),
	}
	staleRunning := &types.JobRun{
		JobType:     "docent_generate",
		EntityType:  "art",
		EntityID:    ptrUint(9),
		Status:      types.JobStatusRunning,
		Stage:       "polling",
		Attempts:    1,
		HeartbeatAt: ptrTime(now.Add(-10 * time.Hour)),
		CreatedAt:   now.Add(-1 * time.Hour),
		UpdatedAt:   now.Add(-1 * time.Hour),
	}

	created, err := repo.Create(dbc, []*types.JobRun{queued, failed, staleRunning})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 3 || queued.ID == uuid.Nil {
		t.Fatalf("Create: expected 3 rows with ids, got %d", len(created))
	}

	got, err := repo.GetByID(dbc, queued.ID)
	if err != nil || got == nil || got.JobType != "docent_generate" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if missing, err := repo.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID(missing): got=%v err=%v", missing, err)
	}

	latest, err := repo.GetLatestByEntity(dbc, "art", 8, "docent_generate")
	if err != nil || latest == nil || latest.ID != failed.ID {
		t.Fatalf("GetLatestByEntity: got=%v err=%v", latest, err)
	}

	if ok, err := repo.ExistsRunnable(dbc, "docent_generate", "art", 7); err != nil || !ok {
		t.Fatalf("ExistsRunnable(queued): ok=%v err=%v", ok, err)
	}
	if ok, err := repo.ExistsRunnable(dbc, "docent_generate", "art", 8); err != nil || ok {
		t.Fatalf("ExistsRunnable(failed): ok=%v err=%v", ok, err)
	}

	// single attempt budget: only the queued job is claimable
	claimed, err := repo.ClaimNextRunnable(dbc, 1, time.Minute, time.Minute)
	if err != nil || claimed == nil || claimed.ID != queued.ID {
		t.Fatalf("ClaimNextRunnable: got=%v err=%v", claimed, err)
	}
	if claimed.Status != types.JobStatusRunning || claimed.Attempts != 1 {
		t.Fatalf("claimed job not marked running: %+v", claimed)
	}
	if next, err := repo.ClaimNextRunnable(dbc, 1, time.Minute, time.Minute); err != nil || next != nil {
		t.Fatalf("expected nothing claimable, got=%v err=%v", next, err)
	}

	// with a larger budget the failed job is retried before the stale one
	next, err := repo.ClaimNextRunnable(dbc, 3, time.Minute, time.Minute)
	if err != nil || next == nil || next.ID != failed.ID {
		t.Fatalf("ClaimNextRunnable(retry): got=%v err=%v", next, err)
	}

	n, err := repo.FailStaleRunning(dbc, 1, time.Minute)
	if err != nil || n != 1 {
		t.Fatalf("FailStaleRunning: n=%d err=%v", n, err)
	}
	stale, _ := repo.GetByID(dbc, staleRunning.ID)
	if stale.Status != types.JobStatusFailed {
		t.Fatalf("stale job status = %q", stale.Status)
	}

	if err := repo.Heartbeat(dbc, queued.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	if err := repo.UpdateFields(dbc, queued.ID, map[string]interface{}{"status": types.JobStatusSucceeded, "progress": 100}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	ok, err := repo.UpdateFieldsUnlessStatus(dbc, queued.ID, []string{types.JobStatusSucceeded}, map[string]interface{}{"stage": "late"})
	if err != nil || ok {
		t.Fatalf("UpdateFieldsUnlessStatus should skip terminal job: ok=%v err=%v", ok, err)
	}
}
