package jobs

// Job run lifecycle statuses. Claiming flips queued (or retryable failed,
// or stale running) rows to running; handlers end at succeeded or failed;
// canceled is set out-of-band and is never overwritten by the runtime.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

// Registered job types.
const (
	TypeProfileRelearn = "profile_relearn"
)
