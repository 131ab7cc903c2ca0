package order

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"fabline/bizerror"
	"fabline/domain"
	"fabline/domain/readiness"
	"fabline/domain/state"
	"fabline/session"
	"fabline/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestHandleTransitOrderStatus(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterOrderStatusTransitionsRestAPI(router)

	t.Run("should return 400 when body is missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, PathOrderStatusTransitions, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param", "message":"EOF", "data":null}`))
	})

	t.Run("should apply the transition and return the new detail", func(t *testing.T) {
		var payload *domain.OrderStatusUpdating
		TransitOrderStatusFunc = func(u *domain.OrderStatusUpdating, s *session.Session) (*domain.OrderDetail, error) {
			payload = u
			return &domain.OrderDetail{Order: domain.Order{ID: u.OrderID, Status: u.Status}}, nil
		}

		req := httptest.NewRequest(http.MethodPost, PathOrderStatusTransitions, bytes.NewReader([]byte(
			`{"orderId":"100","status":"READY_FOR_ENGINEERING"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"status":"READY_FOR_ENGINEERING"`))
		Expect(*payload).To(Equal(domain.OrderStatusUpdating{OrderID: 100, Status: state.StatusReadyForEngineering}))
	})

	t.Run("should carry the unmet criteria when the gate blocks", func(t *testing.T) {
		TransitOrderStatusFunc = func(u *domain.OrderStatusUpdating, s *session.Session) (*domain.OrderDetail, error) {
			return nil, &bizerror.ErrNotReady{Gate: state.GateEngineering,
				Missing: readiness.Missing{Checklist: []types.ID{11}, AttachmentsShort: 1}}
		}

		req := httptest.NewRequest(http.MethodPost, PathOrderStatusTransitions, bytes.NewReader([]byte(
			`{"orderId":"100","status":"READY_FOR_ENGINEERING"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code":"workflow.not_ready", "message":"gate engineering is not satisfied",
			"data": {"gate":"engineering",
				"missing": {"checklist":["11"], "attachmentsShort":1, "commentMissing":false}}}`))
	})

	t.Run("should reject a transition the role is not allowed to run", func(t *testing.T) {
		TransitOrderStatusFunc = func(u *domain.OrderStatusUpdating, s *session.Session) (*domain.OrderDetail, error) {
			return nil, bizerror.ErrForbidden
		}

		req := httptest.NewRequest(http.MethodPost, PathOrderStatusTransitions, bytes.NewReader([]byte(
			`{"orderId":"100","status":"BLOCKED"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"code":"security.forbidden", "message":"access forbidden", "data":null}`))
	})
}

func TestHandleAssignments(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterAssignmentsRestAPI(router)

	t.Run("should assign an engineer", func(t *testing.T) {
		var payload *domain.AssignmentUpdating
		AssignEngineerFunc = func(u *domain.AssignmentUpdating, s *session.Session) (*domain.OrderDetail, error) {
			payload = u
			return &domain.OrderDetail{Order: domain.Order{ID: u.OrderID,
				AssignedEngineerID: u.UserID, AssignedEngineerName: u.UserName}}, nil
		}

		req := httptest.NewRequest(http.MethodPost, PathEngineerAssignments, bytes.NewReader([]byte(
			`{"orderId":"100","userId":"20","userName":"Ann"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"assignedEngineerName":"Ann"`))
		Expect(*payload).To(Equal(domain.AssignmentUpdating{OrderID: 100, UserID: 20, UserName: "Ann"}))
	})

	t.Run("should assign a manager", func(t *testing.T) {
		var payload *domain.AssignmentUpdating
		AssignManagerFunc = func(u *domain.AssignmentUpdating, s *session.Session) (*domain.OrderDetail, error) {
			payload = u
			return &domain.OrderDetail{Order: domain.Order{ID: u.OrderID,
				AssignedManagerID: u.UserID, AssignedManagerName: u.UserName}}, nil
		}

		req := httptest.NewRequest(http.MethodPost, PathManagerAssignments, bytes.NewReader([]byte(
			`{"orderId":"100","userId":"30","userName":"Bob"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"assignedManagerName":"Bob"`))
		Expect(*payload).To(Equal(domain.AssignmentUpdating{OrderID: 100, UserID: 30, UserName: "Bob"}))
	})

	t.Run("should return 400 when the user name is absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, PathEngineerAssignments, bytes.NewReader([]byte(
			`{"orderId":"100","userId":"20"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
			"message":"Key: 'AssignmentUpdating.UserName' Error:Field validation for 'UserName' failed on the 'required' tag",
			"data":null}`))
	})
}

func TestHandleSetChecklistMark(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterChecklistMarksRestAPI(router)

	t.Run("should return 204 on success", func(t *testing.T) {
		var payload *domain.ChecklistMarkUpdating
		SetChecklistMarkFunc = func(u *domain.ChecklistMarkUpdating, s *session.Session) error {
			payload = u
			return nil
		}

		req := httptest.NewRequest(http.MethodPut, PathChecklistMarks, bytes.NewReader([]byte(
			`{"orderId":"100","itemId":"11","done":true}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))
		Expect(body).To(BeZero())

		done := true
		Expect(*payload).To(Equal(domain.ChecklistMarkUpdating{OrderID: 100, ItemID: 11, Done: &done}))
	})

	t.Run("should return 404 when the item is not in the active ruleset", func(t *testing.T) {
		SetChecklistMarkFunc = func(u *domain.ChecklistMarkUpdating, s *session.Session) error {
			return bizerror.ErrNotFound
		}

		req := httptest.NewRequest(http.MethodPut, PathChecklistMarks, bytes.NewReader([]byte(
			`{"orderId":"100","itemId":"999","done":true}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"code":"common.record_not_found", "message":"record not found", "data":null}`))
	})

	t.Run("should return 400 when done flag is absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, PathChecklistMarks, bytes.NewReader([]byte(
			`{"orderId":"100","itemId":"11"}`)))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})
}

func TestHandleCreateComment(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterCommentsRestAPI(router)

	t.Run("should return 201 with the created comment", func(t *testing.T) {
		var payload *domain.CommentCreation
		CreateCommentFunc = func(cc *domain.CommentCreation, s *session.Session) (*domain.Comment, error) {
			payload = cc
			return &domain.Comment{ID: 300, OrderID: cc.OrderID, Content: cc.Content}, nil
		}

		req := httptest.NewRequest(http.MethodPost, PathComments, bytes.NewReader([]byte(
			`{"orderId":"100","content":"drawings confirmed with customer"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(ContainSubstring(`"content":"drawings confirmed with customer"`))
		Expect(*payload).To(Equal(domain.CommentCreation{OrderID: 100, Content: "drawings confirmed with customer"}))
	})

	t.Run("should return 400 when content is empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, PathComments, bytes.NewReader([]byte(
			`{"orderId":"100","content":""}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
			"message":"Key: 'CommentCreation.Content' Error:Field validation for 'Content' failed on the 'required' tag",
			"data":null}`))
	})
}
