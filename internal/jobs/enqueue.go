package jobs

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/emberwell/pulsecheck-backend/internal/data/dataerr"
	"github.com/emberwell/pulsecheck-backend/internal/data/repos"
	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/platform/ctxutil"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

// Enqueuer creates job_run rows for the worker pool to pick up. Each job
// type gets its own method so payload shape stays in one place.
type Enqueuer struct {
	repo repos.JobRunRepo
	log  *logger.Logger
}

func NewEnqueuer(repo repos.JobRunRepo, baseLog *logger.Logger) *Enqueuer {
	return &Enqueuer{
		repo: repo,
		log:  baseLog.With("component", "JobEnqueuer"),
	}
}

// EnqueueProfileRelearn queues a profile_relearn run for the user. A queued
// or running run of the same type for the same user suppresses the enqueue
// (the pending run will read the same history anyway), reported as ok=false
// with no error.
func (e *Enqueuer) EnqueueProfileRelearn(ctx context.Context, userID uuid.UUID) (*types.JobRun, bool, error) {
	if userID == uuid.Nil {
		return nil, false, dataerr.ValidationError("user id is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	exists, err := e.repo.ExistsRunnable(dbc, userID, TypeProfileRelearn)
	if err != nil {
		return nil, false, err
	}
	if exists {
		e.log.Debug("Skipping enqueue, runnable job already pending", "user_id", userID, "job_type", TypeProfileRelearn)
		return nil, false, nil
	}

	payload := map[string]string{"user_id": userID.String()}
	if td, ok := ctxutil.TraceDataFrom(ctx); ok {
		if td.TraceID != "" {
			payload["trace_id"] = td.TraceID
		}
		if td.RequestID != "" {
			payload["request_id"] = td.RequestID
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false, err
	}

	run := &types.JobRun{
		UserID:  userID,
		JobType: TypeProfileRelearn,
		Status:  StatusQueued,
		Stage:   "queued",
		Payload: datatypes.JSON(raw),
	}
	created, err := e.repo.Create(dbc, []*types.JobRun{run})
	if err != nil {
		return nil, false, err
	}
	e.log.Info("Enqueued job", "user_id", userID, "job_type", TypeProfileRelearn, "job_id", created[0].ID)
	return created[0], true, nil
}
