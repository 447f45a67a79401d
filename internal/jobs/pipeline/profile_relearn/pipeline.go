package profile_relearn

import (
	"fmt"

	jobrt "github.com/emberwell/pulsecheck-backend/internal/jobs/runtime"
)

// Run reruns the learner for the payload's user and upserts their profile.
// The whole job is a recompute over stored history, so rerunning it any
// number of times lands on the same profile row.
func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	userID, ok := jc.PayloadUUID("user_id")
	if !ok {
		jc.Fail("validate", fmt.Errorf("missing user_id"))
		return nil
	}
	if p.learning == nil {
		jc.Fail("deps", fmt.Errorf("missing learning service"))
		return nil
	}

	jc.Progress("learn", 10)
	patterns, updated, err := p.learning.RelearnProfile(jc.Ctx, userID)
	if err != nil {
		p.log.Warn("Relearn failed", "user_id", userID, "job_id", jc.Job.ID, "error", err)
		jc.Fail("learn", err)
		return nil
	}
	if patterns == nil {
		// Not enough usable history yet. That is a normal outcome, not
		// a retryable failure.
		jc.Succeed("done", map[string]any{
			"profile_updated": false,
			"reason":          "not_enough_history",
		})
		return nil
	}

	jc.Succeed("done", map[string]any{
		"profile_updated": updated,
		"baseline_score":  patterns.BaselineScore,
		"baseline_source": patterns.BaselineSource,
		"sample_days":     patterns.SampleDays,
		"triggers":        len(patterns.StressTriggers),
	})
	return nil
}
