package profile_relearn

import (
	"gorm.io/gorm"

	"github.com/emberwell/pulsecheck-backend/internal/jobs"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
	"github.com/emberwell/pulsecheck-backend/internal/services"
)

// Pipeline retries the learning pass for one user out-of-band. The daily
// assessment enqueues it when the inline learn step fails, so a transient
// learner or storage error never costs the user their profile refresh.
type Pipeline struct {
	db       *gorm.DB
	log      *logger.Logger
	learning services.LearningService
}

func New(db *gorm.DB, baseLog *logger.Logger, learning services.LearningService) *Pipeline {
	return &Pipeline{
		db:       db,
		log:      baseLog.With("job", jobs.TypeProfileRelearn),
		learning: learning,
	}
}

func (p *Pipeline) Type() string { return jobs.TypeProfileRelearn }
