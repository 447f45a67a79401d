package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/emberwell/pulsecheck-backend/internal/data/repos/testutil"
	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
)

func TestJobRunRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	userID := uuid.New()

	queued := &types.JobRun{
		ID:        uuid.New(),
		UserID:    userID,
		JobType:   "profile_relearn",
		Status:    "queued",
		Stage:     "queued",
		Payload:   datatypes.JSON([]byte("{}")),
		Result:    datatypes.JSON([]byte("{}")),
		CreatedAt: now.Add(-3 * time.Hour),
		UpdatedAt: now.Add(-3 * time.Hour),
	}
	failed := &types.JobRun{
		ID:          uuid.New(),
		UserID:      userID,
		JobType:     "profile_relearn",
		Status:      "failed",
		Stage:       "failed",
		Attempts:    0,
		LastErrorAt: testutil.PtrTime(now.Add(-2 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-2 * time.Hour),
		UpdatedAt:   now.Add(-2 * time.Hour),
	}
	staleRunning := &types.JobRun{
		ID:          uuid.New(),
		UserID:      userID,
		JobType:     "profile_relearn",
		Status:      "running",
		Stage:       "learn",
		Attempts:    0,
		HeartbeatAt: testutil.PtrTime(now.Add(-10 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-1 * time.Hour),
		UpdatedAt:   now.Add(-1 * time.Hour),
	}

	created, err := repo.Create(dbc, []*types.JobRun{queued, failed, staleRunning})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Create: expected 3, got %d", len(created))
	}

	if got, err := repo.GetByID(dbc, queued.ID); err != nil || got.ID != queued.ID {
		t.Fatalf("GetByID: err=%v got=%v", err, got)
	}

	// ClaimNextRunnable should walk the runnable set in created_at ASC order.
	claim1, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #1: %v", err)
	}
	if claim1 == nil || claim1.ID != queued.ID {
		t.Fatalf("ClaimNextRunnable #1: expected %v got %v", queued.ID, claim1)
	}

	claim2, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #2: %v", err)
	}
	if claim2 == nil || claim2.ID != failed.ID {
		t.Fatalf("ClaimNextRunnable #2: expected %v got %v", failed.ID, claim2)
	}

	claim3, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #3: %v", err)
	}
	if claim3 == nil || claim3.ID != staleRunning.ID {
		t.Fatalf("ClaimNextRunnable #3: expected %v got %v", staleRunning.ID, claim3)
	}

	claim4, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #4: %v", err)
	}
	if claim4 != nil {
		t.Fatalf("ClaimNextRunnable #4: expected nil, got %v", claim4)
	}

	// Claimed rows are running with bumped attempts.
	reloaded, err := repo.GetByID(dbc, queued.ID)
	if err != nil {
		t.Fatalf("GetByID after claim: %v", err)
	}
	if reloaded.Status != "running" || reloaded.Attempts != 1 {
		t.Fatalf("after claim: status=%s attempts=%d, want running/1", reloaded.Status, reloaded.Attempts)
	}

	// UpdateFields
	if err := repo.UpdateFields(dbc, queued.ID, map[string]interface{}{"status": "failed", "stage": "error"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	// UpdateFieldsUnlessStatus skips rows already in a terminal status.
	if err := repo.UpdateFields(dbc, failed.ID, map[string]interface{}{"status": "canceled"}); err != nil {
		t.Fatalf("UpdateFields to canceled: %v", err)
	}
	changed, err := repo.UpdateFieldsUnlessStatus(dbc, failed.ID, []string{"canceled"}, map[string]interface{}{"status": "succeeded"})
	if err != nil {
		t.Fatalf("UpdateFieldsUnlessStatus: %v", err)
	}
	if changed {
		t.Fatalf("UpdateFieldsUnlessStatus: expected no-op on canceled row")
	}

	// Heartbeat only touches running rows.
	if err := repo.Heartbeat(dbc, staleRunning.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	// ExistsRunnable
	otherUser := uuid.New()
	runnable := &types.JobRun{
		ID:      uuid.New(),
		UserID:  otherUser,
		JobType: "profile_relearn",
		Status:  "queued",
		Stage:   "queued",
		Payload: datatypes.JSON([]byte("{}")),
		Result:  datatypes.JSON([]byte("{}")),
	}
	if _, err := repo.Create(dbc, []*types.JobRun{runnable}); err != nil {
		t.Fatalf("seed runnable: %v", err)
	}

	exists, err := repo.ExistsRunnable(dbc, otherUser, "profile_relearn")
	if err != nil {
		t.Fatalf("ExistsRunnable: %v", err)
	}
	if !exists {
		t.Fatalf("ExistsRunnable: expected true")
	}

	exists, err = repo.ExistsRunnable(dbc, otherUser, "other_job")
	if err != nil {
		t.Fatalf("ExistsRunnable (other type): %v", err)
	}
	if exists {
		t.Fatalf("ExistsRunnable (other type): expected false")
	}
}
