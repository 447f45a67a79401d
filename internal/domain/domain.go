package domain

import (
	"github.com/emberwell/pulsecheck-backend/internal/domain/jobs"
	"github.com/emberwell/pulsecheck-backend/internal/domain/user"
	"github.com/emberwell/pulsecheck-backend/internal/domain/wellness"
)

type User = user.User

type BurnoutAnalysis = wellness.BurnoutAnalysis
type BehavioralProfile = wellness.BehavioralProfile

type JobRun = jobs.JobRun
