package runtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/jobs"
	"github.com/emberwell/pulsecheck-backend/internal/platform/ctxutil"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
)

// fakeJobRunRepo records guarded updates and can simulate a canceled row
// by rejecting writes.
type fakeJobRunRepo struct {
	updates      []map[string]interface{}
	rejectWrites bool
	heartbeats   int
}

func (f *fakeJobRunRepo) Create(dbc dbctx.Context, jobs []*types.JobRun) ([]*types.JobRun, error) {
	return jobs, nil
}

func (f *fakeJobRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JobRun, error) {
	return nil, nil
}

func (f *fakeJobRunRepo) ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay, staleRunning time.Duration) (*types.JobRun, error) {
	return nil, nil
}

func (f *fakeJobRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (f *fakeJobRunRepo) UpdateFieldsUnlessStatus(dbc dbctx.Context, id uuid.UUID, disallowed []string, updates map[string]interface{}) (bool, error) {
	if f.rejectWrites {
		return false, nil
	}
	f.updates = append(f.updates, updates)
	return true, nil
}

func (f *fakeJobRunRepo) Heartbeat(dbc dbctx.Context, id uuid.UUID) error {
	f.heartbeats++
	return nil
}

func (f *fakeJobRunRepo) ExistsRunnable(dbc dbctx.Context, userID uuid.UUID, jobType string) (bool, error) {
	return false, nil
}

func testJob(payload string) *types.JobRun {
	return &types.JobRun{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		JobType: "profile_relearn",
		Status:  "running",
		Payload: datatypes.JSON([]byte(payload)),
	}
}

func TestPayloadDecoding(t *testing.T) {
	userID := uuid.New()
	job := testJob(`{"user_id":"` + userID.String() + `","note":"x"}`)
	jc := NewContext(context.Background(), nil, job, &fakeJobRunRepo{})

	if got := jc.Payload()["note"]; got != "x" {
		t.Fatalf("Payload note: want=%q got=%v", "x", got)
	}
	id, ok := jc.PayloadUUID("user_id")
	if !ok || id != userID {
		t.Fatalf("PayloadUUID: want=(%v,true) got=(%v,%v)", userID, id, ok)
	}
	if _, ok := jc.PayloadUUID("missing"); ok {
		t.Fatalf("PayloadUUID missing key: want ok=false")
	}
	if _, ok := jc.PayloadUUID("note"); ok {
		t.Fatalf("PayloadUUID non-uuid value: want ok=false")
	}
}

func TestPayloadMalformedJSONIsNonFatal(t *testing.T) {
	jc := NewContext(context.Background(), nil, testJob(`{not json`), &fakeJobRunRepo{})
	if got := len(jc.Payload()); got != 0 {
		t.Fatalf("Payload after decode failure: want empty map, got %d keys", got)
	}
	if _, ok := jc.PayloadUUID("user_id"); ok {
		t.Fatalf("PayloadUUID on malformed payload: want ok=false")
	}
}

func TestTraceDataCarriedFromPayload(t *testing.T) {
	job := testJob(`{"trace_id":"trace-1","request_id":"req-1"}`)
	jc := NewContext(context.Background(), nil, job, &fakeJobRunRepo{})

	td, ok := ctxutil.TraceDataFrom(jc.Ctx)
	if !ok {
		t.Fatalf("TraceDataFrom: want ok=true")
	}
	if td.TraceID != "trace-1" || td.RequestID != "req-1" {
		t.Fatalf("TraceDataFrom: want=(trace-1,req-1) got=(%s,%s)", td.TraceID, td.RequestID)
	}
}

func TestProgressPersistsAndSyncs(t *testing.T) {
	repo := &fakeJobRunRepo{}
	job := testJob(`{}`)
	jc := NewContext(context.Background(), nil, job, repo)

	jc.Progress("learn", 40)

	if len(repo.updates) != 1 {
		t.Fatalf("Progress updates: want=1 got=%d", len(repo.updates))
	}
	u := repo.updates[0]
	if u["stage"] != "learn" || u["progress"] != 40 {
		t.Fatalf("Progress persisted fields: want=(learn,40) got=(%v,%v)", u["stage"], u["progress"])
	}
	if _, ok := u["heartbeat_at"]; !ok {
		t.Fatalf("Progress: want heartbeat_at in update")
	}
	if job.Stage != "learn" || job.Progress != 40 || job.HeartbeatAt == nil {
		t.Fatalf("Progress in-memory sync: got stage=%q progress=%d heartbeat=%v", job.Stage, job.Progress, job.HeartbeatAt)
	}
}

func TestProgressRespectsCanceledGuard(t *testing.T) {
	repo := &fakeJobRunRepo{rejectWrites: true}
	job := testJob(`{}`)
	job.Status = "canceled"
	jc := NewContext(context.Background(), nil, job, repo)

	jc.Progress("learn", 40)

	if job.Stage != "" || job.Progress != 0 {
		t.Fatalf("Progress on canceled run mutated memory: stage=%q progress=%d", job.Stage, job.Progress)
	}
}

func TestFailPersistsTerminalState(t *testing.T) {
	repo := &fakeJobRunRepo{}
	job := testJob(`{}`)
	jc := NewContext(context.Background(), nil, job, repo)

	jc.Fail("learn", errBoom{})

	if len(repo.updates) != 1 {
		t.Fatalf("Fail updates: want=1 got=%d", len(repo.updates))
	}
	u := repo.updates[0]
	if u["status"] != jobs.StatusFailed || u["stage"] != "learn" || u["error"] != "boom" {
		t.Fatalf("Fail persisted fields: got status=%v stage=%v error=%v", u["status"], u["stage"], u["error"])
	}
	if u["locked_at"] != nil {
		t.Fatalf("Fail: want locked_at cleared, got %v", u["locked_at"])
	}
	if job.Status != jobs.StatusFailed || job.Error != "boom" || job.LastErrorAt == nil {
		t.Fatalf("Fail in-memory sync: status=%q error=%q lastErrorAt=%v", job.Status, job.Error, job.LastErrorAt)
	}
	if job.LockedAt != nil {
		t.Fatalf("Fail: want in-memory locked_at nil")
	}
}

func TestSucceedPersistsResult(t *testing.T) {
	repo := &fakeJobRunRepo{}
	job := testJob(`{}`)
	job.Error = "leftover"
	jc := NewContext(context.Background(), nil, job, repo)

	jc.Succeed("done", map[string]any{"profile_updated": true})

	if len(repo.updates) != 1 {
		t.Fatalf("Succeed updates: want=1 got=%d", len(repo.updates))
	}
	u := repo.updates[0]
	if u["status"] != jobs.StatusSucceeded || u["progress"] != 100 || u["error"] != "" {
		t.Fatalf("Succeed persisted fields: got status=%v progress=%v error=%v", u["status"], u["progress"], u["error"])
	}
	var decoded map[string]any
	if err := json.Unmarshal(job.Result, &decoded); err != nil {
		t.Fatalf("Succeed result decode: %v", err)
	}
	if decoded["profile_updated"] != true {
		t.Fatalf("Succeed result: want profile_updated=true got=%v", decoded["profile_updated"])
	}
	if job.Status != jobs.StatusSucceeded || job.Progress != 100 || job.Error != "" {
		t.Fatalf("Succeed in-memory sync: status=%q progress=%d error=%q", job.Status, job.Progress, job.Error)
	}
}

func TestSucceedRespectsCanceledGuard(t *testing.T) {
	repo := &fakeJobRunRepo{rejectWrites: true}
	job := testJob(`{}`)
	job.Status = "canceled"
	jc := NewContext(context.Background(), nil, job, repo)

	jc.Succeed("done", nil)

	if job.Status != "canceled" {
		t.Fatalf("Succeed on canceled run: want status=canceled got=%q", job.Status)
	}
	if len(repo.updates) != 0 {
		t.Fatalf("Succeed on canceled run: want no recorded updates, got %d", len(repo.updates))
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
