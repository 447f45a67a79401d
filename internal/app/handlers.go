package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	httpH "github.com/emberwell/pulsecheck-backend/internal/http/handlers"
	"github.com/emberwell/pulsecheck-backend/internal/observability"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
	"github.com/emberwell/pulsecheck-backend/internal/server"
)

type Handlers struct {
	User       *httpH.UserHandler
	Assessment *httpH.AssessmentHandler
	History    *httpH.HistoryHandler
	Profile    *httpH.ProfileHandler
	Health     *httpH.HealthHandler
}

func wireHandlers(db *gorm.DB, serviceset Services, clients Clients) Handlers {
	return Handlers{
		User:       httpH.NewUserHandler(serviceset.User),
		Assessment: httpH.NewAssessmentHandler(serviceset.Assessment),
		History:    httpH.NewHistoryHandler(serviceset.History),
		Profile:    httpH.NewProfileHandler(serviceset.Profile),
		Health:     httpH.NewHealthHandler(db, clients.Events),
	}
}

func wireRouter(log *logger.Logger, metrics *observability.Metrics, handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		UserHandler:       handlerset.User,
		AssessmentHandler: handlerset.Assessment,
		HistoryHandler:    handlerset.History,
		ProfileHandler:    handlerset.Profile,
		HealthHandler:     handlerset.Health,
	})
}
