package app

import (
	"gorm.io/gorm"

	"github.com/emberwell/pulsecheck-backend/internal/data/repos"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

type Repos struct {
	Users    repos.UserRepo
	Analyses repos.AnalysisRepo
	Profiles repos.ProfileRepo
	JobRuns  repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Users:    repos.NewUserRepo(db, log),
		Analyses: repos.NewAnalysisRepo(db, log),
		Profiles: repos.NewProfileRepo(db, log),
		JobRuns:  repos.NewJobRunRepo(db, log),
	}
}
