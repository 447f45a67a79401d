package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/emberwell/pulsecheck-backend/internal/data/repos"
	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/jobs"
	"github.com/emberwell/pulsecheck-backend/internal/platform/ctxutil"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
)

/*
Context is the execution handle for a single claimed job run. It wraps the
database handle, the mutable job_run row, and the only sanctioned ways to
report progress or terminate execution. Handlers never touch job_run rows
directly; every state transition goes through this object so the canceled
guard is applied uniformly.
*/
type Context struct {
	Ctx     context.Context
	DB      *gorm.DB
	Job     *types.JobRun
	Repo    repos.JobRunRepo
	payload map[string]any
}

/*
NewContext constructs a Context for a claimed job execution. It eagerly
decodes the payload JSON so handlers can read inputs via Payload() and
PayloadUUID(), and re-attaches any trace identifiers the enqueuer stamped
onto the payload. A payload decode failure is non-fatal here; handlers
validate the fields they require.
*/
func NewContext(ctx context.Context, db *gorm.DB, job *types.JobRun, repo repos.JobRunRepo) *Context {
	c := &Context{
		Ctx:  ctx,
		DB:   db,
		Job:  job,
		Repo: repo,
	}
	_ = c.decodePayload()
	c.applyTraceData()
	return c
}

// decodePayload parses Job.Payload into a map. On unmarshal failure the
// payload is set to an empty map and the error returned, so callers decide
// whether a malformed payload should fail the job.
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

// applyTraceData carries trace/request ids from the enqueueing request into
// the job's context so logs and alerts correlate across the async boundary.
func (c *Context) applyTraceData() {
	if c == nil || c.Ctx == nil {
		return
	}
	payload := c.Payload()
	traceID := payloadString(payload, "trace_id")
	reqID := payloadString(payload, "request_id")
	if traceID == "" && reqID == "" {
		return
	}
	c.Ctx = ctxutil.WithTraceData(c.Ctx, ctxutil.TraceData{
		TraceID:   traceID,
		RequestID: reqID,
	})
}

// Payload returns the decoded payload map. Never nil.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

/*
PayloadUUID reads a payload field and attempts to parse it as a UUID.
Returns (uuid.Nil, false) when the key is missing, nil, or unparseable.
Keeps UUID validation out of handlers so payload parsing stays uniform.
*/
func (c *Context) PayloadUUID(key string) (uuid.UUID, bool) {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimSpace(fmt.Sprint(v)))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

/*
Progress publishes a non-terminal status update: stage, percent, and a
fresh heartbeat, guarded so a canceled run is never overwritten. The
in-memory row is kept in sync only when the store accepted the write.
*/
func (c *Context) Progress(stage string, pct int) {
	if c == nil {
		return
	}
	now := time.Now()
	if !c.update(map[string]interface{}{
		"stage":        stage,
		"progress":     pct,
		"heartbeat_at": now,
		"updated_at":   now,
	}) {
		return
	}
	if c.Job != nil {
		c.Job.Stage = stage
		c.Job.Progress = pct
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}
}

/*
Fail marks the run as terminally failed: status=failed, the failing stage,
the error text, and last_error_at for the retry backoff window. locked_at
is cleared so the row reads as not-in-progress. A canceled run is left
untouched.
*/
func (c *Context) Fail(stage string, err error) {
	if c == nil {
		return
	}
	now := time.Now()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if !c.update(map[string]interface{}{
		"status":        jobs.StatusFailed,
		"stage":         stage,
		"error":         msg,
		"last_error_at": now,
		"locked_at":     nil,
		"updated_at":    now,
	}) {
		return
	}
	if c.Job != nil {
		c.Job.Status = jobs.StatusFailed
		c.Job.Stage = stage
		c.Job.Error = msg
		c.Job.LastErrorAt = &now
		c.Job.LockedAt = nil
		c.Job.UpdatedAt = now
	}
}

/*
Succeed marks the run as terminally succeeded, persists the result payload
as JSON, clears the error and lock, and pins progress at 100. A canceled
run is left untouched.
*/
func (c *Context) Succeed(finalStage string, result any) {
	if c == nil {
		return
	}
	now := time.Now()
	var res datatypes.JSON
	if result != nil {
		b, _ := json.Marshal(result)
		res = datatypes.JSON(b)
	}
	if !c.update(map[string]interface{}{
		"status":       jobs.StatusSucceeded,
		"stage":        finalStage,
		"progress":     100,
		"error":        "",
		"result":       res,
		"locked_at":    nil,
		"heartbeat_at": now,
		"updated_at":   now,
	}) {
		return
	}
	if c.Job != nil {
		c.Job.Status = jobs.StatusSucceeded
		c.Job.Stage = finalStage
		c.Job.Progress = 100
		c.Job.Error = ""
		c.Job.Result = res
		c.Job.LockedAt = nil
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}
}

// update applies guarded field updates to the job row and reports whether
// the store accepted them. Rows already canceled reject every write.
func (c *Context) update(updates map[string]interface{}) bool {
	if c.Repo == nil || c.Job == nil || c.Job.ID == uuid.Nil {
		// Nothing to persist; let in-memory sync proceed for tests and
		// dry runs.
		return true
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ok, _ := c.Repo.UpdateFieldsUnlessStatus(dbctx.Context{Ctx: ctx}, c.Job.ID, []string{jobs.StatusCanceled}, updates)
	return ok
}

func payloadString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
