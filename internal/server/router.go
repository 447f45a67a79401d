package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/emberwell/pulsecheck-backend/internal/http/handlers"
	httpMW "github.com/emberwell/pulsecheck-backend/internal/http/middleware"
	"github.com/emberwell/pulsecheck-backend/internal/observability"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	UserHandler       *httpH.UserHandler
	AssessmentHandler *httpH.AssessmentHandler
	HistoryHandler    *httpH.HistoryHandler
	ProfileHandler    *httpH.ProfileHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Server span first so AttachTraceContext can lift its trace id.
	r.Use(otelgin.Middleware("pulsecheck-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Check)
	}

	api := r.Group("/api/v1")
	{
		if cfg.UserHandler != nil {
			api.POST("/users", cfg.UserHandler.Register)
			api.GET("/users/:user_id", cfg.UserHandler.GetUser)
		}

		users := api.Group("/users/:user_id")
		{
			if cfg.AssessmentHandler != nil {
				users.POST("/assessments", cfg.AssessmentHandler.Run)
			}
			if cfg.HistoryHandler != nil {
				users.GET("/assessments", cfg.HistoryHandler.List)
				users.GET("/assessments/latest", cfg.HistoryHandler.Latest)
			}
			if cfg.ProfileHandler != nil {
				users.GET("/profile", cfg.ProfileHandler.Get)
				users.POST("/profile/recommendation-events", cfg.ProfileHandler.RecordRecommendationEvent)
			}
		}
	}

	return r
}
