package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/emberwell/pulsecheck-backend/internal/jobs"
	"github.com/emberwell/pulsecheck-backend/internal/jobs/pipeline/profile_relearn"
	"github.com/emberwell/pulsecheck-backend/internal/jobs/runtime"
	"github.com/emberwell/pulsecheck-backend/internal/jobs/worker"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
	"github.com/emberwell/pulsecheck-backend/internal/platform/userlock"
	"github.com/emberwell/pulsecheck-backend/internal/services"
)

type Services struct {
	User       services.UserService
	History    services.HistoryService
	Profile    services.ProfileService
	Learning   services.LearningService
	Assessment services.AssessmentService

	Enqueuer  *jobs.Enqueuer
	JobWorker *worker.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	enqueuer := jobs.NewEnqueuer(reposet.JobRuns, log)
	learning := services.NewLearningService(log, reposet.Analyses, reposet.Profiles, enqueuer)

	assessment := services.NewAssessmentService(
		log,
		reposet.Users,
		reposet.Analyses,
		learning,
		clients.Sentiment,
		userlock.NewKeyedMutex(),
		clients.Events,
		clients.Alerts,
	)

	registry := runtime.NewRegistry()
	if err := registry.Register(profile_relearn.New(db, log, learning)); err != nil {
		return Services{}, fmt.Errorf("register profile_relearn pipeline: %w", err)
	}

	return Services{
		User:       services.NewUserService(log, reposet.Users),
		History:    services.NewHistoryService(log, reposet.Analyses),
		Profile:    services.NewProfileService(log, reposet.Profiles),
		Learning:   learning,
		Assessment: assessment,
		Enqueuer:   enqueuer,
		JobWorker:  worker.NewWorker(db, log, reposet.JobRuns, registry),
	}, nil
}
