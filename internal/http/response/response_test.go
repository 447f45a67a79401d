package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/emberwell/pulsecheck-backend/internal/data/dataerr"
	"github.com/emberwell/pulsecheck-backend/internal/platform/apierr"
)

func TestRespondServiceErrorMapsSentinels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", dataerr.ValidationError("bad input"), http.StatusUnprocessableEntity, "validation_failed"},
		{"not_found", dataerr.NotFoundError("missing"), http.StatusNotFound, "not_found"},
		{"conflict", dataerr.ConflictError("duplicate"), http.StatusConflict, "conflict"},
		{"retryable", dataerr.RetryableError("busy"), http.StatusServiceUnavailable, "retry_later"},
		{"api_error", apierr.New(http.StatusTeapot, "teapot", nil), http.StatusTeapot, "teapot"},
		{"unknown", errFixed("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			RespondServiceError(c, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status: want=%d got=%d", tc.wantStatus, rec.Code)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.Error.Code != tc.wantCode {
				t.Fatalf("code: want=%q got=%q", tc.wantCode, env.Error.Code)
			}
			if env.Error.Message == "" {
				t.Fatalf("message: want non-empty")
			}
		})
	}
}

type errFixed string

func (e errFixed) Error() string { return string(e) }
