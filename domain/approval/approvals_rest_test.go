package approval_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"voltflow/bizerror"
	"voltflow/domain"
	"voltflow/domain/approval"
	"voltflow/domain/status"
	"voltflow/session"
	"voltflow/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

var (
	router     *gin.Engine
	demoTime   types.Timestamp
	timeString string
)

func beforeEach() {
	router = gin.Default()
	router.Use(bizerror.ErrorHandling())
	approval.RegisterApprovalsRestAPI(router)

	demoTime = types.TimestampOfDate(2025, 3, 1, 8, 0, 0, 0, time.Now().Location())
	timeBytes, err := demoTime.Time().MarshalJSON()
	Expect(err).To(BeNil())
	timeString = string(bytes.Trim(timeBytes, `"`))
}

func TestCreateApprovalAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be able to serve create request", func(t *testing.T) {
		beforeEach()

		approval.CreateApprovalFunc = func(c *domain.DeadlineApprovalCreating, s *session.Session) (*domain.DeadlineApproval, error) {
			return &domain.DeadlineApproval{ID: 123, Type: c.Type, TaskID: c.TaskID, WorkID: 200,
				ProposedDeadlineDays: c.ProposedDeadlineDays, Justification: c.Justification,
				Status: status.ApprovalPending, RequestedBy: 20, CreateTime: demoTime}, nil
		}

		reqBody, err := json.Marshal(&domain.DeadlineApprovalCreating{
			Type: domain.ApprovalTypeEmployeeDeadline, TaskID: 100, ProposedDeadlineDays: 7, Justification: "demo"})
		Expect(err).To(BeNil())
		req := httptest.NewRequest(http.MethodPost, "/v1/deadline-approvals", bytes.NewReader(reqBody))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(MatchJSON(`{"id":"123","type":"employee_deadline","taskId":"100","workId":"200",
			"proposedStartDate": null, "proposedEndDate": null, "proposedDeadlineDays":7,"justification":"demo",
			"status":"pending","requestedBy":"20","approvedBy":"0","adminNotes":"","adminApprovedAt": null,
			"clientId":"0","clientNotes":"","clientApprovedAt": null,"createTime":"` + timeString + `"}`))
	})

	t.Run("should return 400 when validate failed", func(t *testing.T) {
		beforeEach()

		req := httptest.NewRequest(http.MethodPost, "/v1/deadline-approvals", bytes.NewReader([]byte(`{}`)))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})
}

func TestAdminDecideAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be able to serve admin decision", func(t *testing.T) {
		beforeEach()

		approval.AdminDecideFunc = func(id types.ID, d *domain.AdminDecision, s *session.Session) (*domain.DeadlineApproval, error) {
			Expect(id).To(Equal(types.ID(123)))
			Expect(d.Status).To(Equal(status.ApprovalApproved))
			return &domain.DeadlineApproval{ID: id, Status: d.Status, AdminNotes: d.AdminNotes}, nil
		}

		req := httptest.NewRequest(http.MethodPut, "/v1/deadline-approvals/123/admin-decision",
			bytes.NewReader([]byte(`{"status":"approved","adminNotes":"ok"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"status":"approved"`))
	})

	t.Run("should refuse statuses outside the admin gate", func(t *testing.T) {
		beforeEach()

		req := httptest.NewRequest(http.MethodPut, "/v1/deadline-approvals/123/admin-decision",
			bytes.NewReader([]byte(`{"status":"client_approved"}`)))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("should map processed conflict to 400", func(t *testing.T) {
		beforeEach()

		approval.AdminDecideFunc = func(id types.ID, d *domain.AdminDecision, s *session.Session) (*domain.DeadlineApproval, error) {
			return nil, bizerror.ErrApprovalAlreadyProcessed
		}

		req := httptest.NewRequest(http.MethodPut, "/v1/deadline-approvals/123/admin-decision",
			bytes.NewReader([]byte(`{"status":"rejected"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"approval.already_processed","message":"approval already processed","data":null}`))
	})

	t.Run("should return 400 on invalid id", func(t *testing.T) {
		beforeEach()

		req := httptest.NewRequest(http.MethodPut, "/v1/deadline-approvals/abc/admin-decision",
			bytes.NewReader([]byte(`{"status":"approved"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid id 'abc'","data":null}`))
	})
}

func TestClientDecideAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be able to serve client decision", func(t *testing.T) {
		beforeEach()

		approval.ClientDecideFunc = func(id types.ID, d *domain.ClientDecision, s *session.Session) (*domain.DeadlineApproval, error) {
			Expect(*d.Approved).To(BeFalse())
			return &domain.DeadlineApproval{ID: id, Status: status.ApprovalRejected, ClientNotes: d.ClientNotes}, nil
		}

		req := httptest.NewRequest(http.MethodPut, "/v1/deadline-approvals/123/client-decision",
			bytes.NewReader([]byte(`{"approved":false,"clientNotes":"dates not acceptable"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"status":"rejected"`))
	})

	t.Run("should return 400 when approved flag is missing", func(t *testing.T) {
		beforeEach()

		req := httptest.NewRequest(http.MethodPut, "/v1/deadline-approvals/123/client-decision",
			bytes.NewReader([]byte(`{"clientNotes":"?"}`)))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("should map not-yet-approved to 400", func(t *testing.T) {
		beforeEach()

		approval.ClientDecideFunc = func(id types.ID, d *domain.ClientDecision, s *session.Session) (*domain.DeadlineApproval, error) {
			return nil, bizerror.ErrApprovalNotYetApproved
		}

		req := httptest.NewRequest(http.MethodPut, "/v1/deadline-approvals/123/client-decision",
			bytes.NewReader([]byte(`{"approved":true}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"approval.not_yet_approved","message":"approval not yet approved internally","data":null}`))
	})
}

func TestApprovalQueriesAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should serve list with filters", func(t *testing.T) {
		beforeEach()

		approval.QueryApprovalsFunc = func(q *domain.DeadlineApprovalQuery, s *session.Session) (*[]domain.DeadlineApproval, error) {
			Expect(q.TaskID).To(Equal(types.ID(100)))
			Expect(q.Status).To(Equal(status.ApprovalPending))
			return &[]domain.DeadlineApproval{{ID: 123, TaskID: 100, Status: status.ApprovalPending, CreateTime: demoTime}}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/deadline-approvals?taskId=100&status=pending", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"total":1`))
		Expect(body).To(ContainSubstring(`"id":"123"`))
	})

	t.Run("should serve stats", func(t *testing.T) {
		beforeEach()

		approval.QueryApprovalStatsFunc = func(s *session.Session) (*domain.ApprovalStats, error) {
			return &domain.ApprovalStats{Pending: 2, Approved: 1, ClientApproved: 1, Total: 4}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/deadline-approvals/stats", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"pending":2,"approved":1,"rejected":0,"cancelled":0,"clientApproved":1,"total":4}`))
	})

	t.Run("should return 500 when service process failed", func(t *testing.T) {
		beforeEach()

		approval.QueryPendingAdminFunc = func(s *session.Session) (*[]domain.DeadlineApproval, error) {
			return nil, errors.New("a mocked error")
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/deadline-approvals/pending-admin", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"a mocked error","data":null}`))
	})
}
