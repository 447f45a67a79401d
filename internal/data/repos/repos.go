package repos

import (
	"gorm.io/gorm"

	"github.com/emberwell/pulsecheck-backend/internal/data/repos/jobs"
	"github.com/emberwell/pulsecheck-backend/internal/data/repos/user"
	"github.com/emberwell/pulsecheck-backend/internal/data/repos/wellness"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type AnalysisRepo = wellness.AnalysisRepo
type ProfileRepo = wellness.ProfileRepo

type JobRunRepo = jobs.JobRunRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisRepo {
	return wellness.NewAnalysisRepo(db, baseLog)
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return wellness.NewProfileRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}
