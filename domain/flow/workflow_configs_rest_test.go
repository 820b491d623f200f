package flow_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"voltflow/bizerror"
	"voltflow/domain"
	"voltflow/domain/flow"
	"voltflow/session"
	"voltflow/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

var router *gin.Engine

func beforeEach() {
	router = gin.Default()
	router.Use(bizerror.ErrorHandling())
	flow.RegisterWorkflowConfigsRestAPI(router)
}

func TestValidateDeadlineAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should report bounds on out-of-range proposals", func(t *testing.T) {
		beforeEach()

		flow.ValidateDeadlineFunc = func(req *domain.DeadlineValidationRequest, s *session.Session) (*domain.DeadlineValidationResult, error) {
			Expect(req.ProposedDays).To(Equal(20))
			return &domain.DeadlineValidationResult{Valid: false, Min: 3, Max: 10, Default: 5}, nil
		}

		req := httptest.NewRequest(http.MethodPost, "/v1/workflow-configs/validate-deadline",
			bytes.NewReader([]byte(`{"workType":"solar","stage":"project","stepName":"electrical design","proposedDays":20}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"valid":false,"min":3,"max":10,"default":5}`))
	})

	t.Run("a valid proposal carries no bounds", func(t *testing.T) {
		beforeEach()

		flow.ValidateDeadlineFunc = func(req *domain.DeadlineValidationRequest, s *session.Session) (*domain.DeadlineValidationResult, error) {
			return &domain.DeadlineValidationResult{Valid: true}, nil
		}

		req := httptest.NewRequest(http.MethodPost, "/v1/workflow-configs/validate-deadline",
			bytes.NewReader([]byte(`{"workType":"solar","stage":"project","stepName":"electrical design","proposedDays":7}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"valid":true}`))
	})

	t.Run("should return 400 on incomplete request", func(t *testing.T) {
		beforeEach()

		req := httptest.NewRequest(http.MethodPost, "/v1/workflow-configs/validate-deadline",
			bytes.NewReader([]byte(`{"workType":"solar"}`)))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})
}
