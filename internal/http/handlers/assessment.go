package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/emberwell/pulsecheck-backend/internal/burnout"
	"github.com/emberwell/pulsecheck-backend/internal/http/response"
	"github.com/emberwell/pulsecheck-backend/internal/services"
)

// Metric submissions are small JSON documents; anything past this is a
// client bug or abuse.
const maxAssessmentBodyBytes = 1 << 20

type AssessmentHandler struct {
	assessments services.AssessmentService
}

func NewAssessmentHandler(assessments services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

type runAssessmentRequest struct {
	AnalysisDate string                   `json:"analysis_date"`
	Metrics      burnout.UserMetrics      `json:"metrics"`
	Qualitative  burnout.QualitativeInput `json:"qualitative"`
}

// POST /api/v1/users/:user_id/assessments
func (h *AssessmentHandler) Run(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAssessmentBodyBytes)
	var req runAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	var date time.Time
	if req.AnalysisDate != "" {
		date, err = time.Parse("2006-01-02", req.AnalysisDate)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_analysis_date", err)
			return
		}
	}

	result, err := h.assessments.RunDailyAssessment(c.Request.Context(), services.RunInput{
		UserID:      userID,
		Date:        date,
		Metrics:     req.Metrics,
		Qualitative: req.Qualitative,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}
