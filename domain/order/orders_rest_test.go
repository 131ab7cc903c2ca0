package order

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fabline/bizerror"
	"fabline/domain"
	"fabline/domain/state"
	"fabline/session"
	"fabline/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestHandleCreateOrder(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterOrdersRestAPI(router)

	t.Run("should return 400 when body is missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, PathOrders, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param", "message":"EOF", "data":null}`))
	})

	t.Run("should return 400 when validation failed", func(t *testing.T) {
		var payload *domain.OrderCreation
		CreateOrderFunc = func(c *domain.OrderCreation, s *session.Session) (*domain.OrderDetail, error) {
			payload = c
			return &domain.OrderDetail{}, nil
		}

		req := httptest.NewRequest(http.MethodPost, PathOrders, bytes.NewReader([]byte(`{"name":"bracket batch"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
			"message":"Key: 'OrderCreation.OrderNumber' Error:Field validation for 'OrderNumber' failed on the 'required' tag",
			"data":null}`))
		Expect(payload).To(BeNil())
	})

	t.Run("should return 201 with the created detail", func(t *testing.T) {
		var payload *domain.OrderCreation
		CreateOrderFunc = func(c *domain.OrderCreation, s *session.Session) (*domain.OrderDetail, error) {
			payload = c
			return &domain.OrderDetail{Order: domain.Order{ID: 100, OrderNumber: c.OrderNumber, Name: c.Name,
				Status: state.StatusDraft, Priority: state.PriorityHigh}}, nil
		}

		req := httptest.NewRequest(http.MethodPost, PathOrders, bytes.NewReader([]byte(
			`{"orderNumber":"ORD-0001","name":"bracket batch","priority":"HIGH"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(ContainSubstring(`"orderNumber":"ORD-0001"`))
		Expect(body).To(ContainSubstring(`"status":"DRAFT"`))

		Expect(*payload).To(Equal(domain.OrderCreation{OrderNumber: "ORD-0001", Name: "bracket batch",
			Priority: state.PriorityHigh}))
	})
}

func TestHandleDetailOrder(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterOrdersRestAPI(router)

	t.Run("should pass the path identifier through untouched", func(t *testing.T) {
		var identifier string
		DetailOrderFunc = func(id string, s *session.Session) (*domain.OrderDetail, error) {
			identifier = id
			return &domain.OrderDetail{Order: domain.Order{ID: 100, OrderNumber: "ORD-0001"}}, nil
		}

		req := httptest.NewRequest(http.MethodGet, PathOrders+"/ORD-0001", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(identifier).To(Equal("ORD-0001"))
	})

	t.Run("should return 404 when unknown", func(t *testing.T) {
		DetailOrderFunc = func(id string, s *session.Session) (*domain.OrderDetail, error) {
			return nil, bizerror.ErrNotFound
		}

		req := httptest.NewRequest(http.MethodGet, PathOrders+"/404", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"code":"common.record_not_found", "message":"record not found", "data":null}`))
	})
}

func TestHandleQueryOrders(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterOrdersRestAPI(router)

	t.Run("should bind name and statuses from the query string", func(t *testing.T) {
		var query *domain.OrderQuery
		QueryOrdersFunc = func(q *domain.OrderQuery, s *session.Session) (*[]domain.Order, error) {
			query = q
			return &[]domain.Order{{ID: 100, OrderNumber: "ORD-0001"}}, nil
		}

		req := httptest.NewRequest(http.MethodGet,
			PathOrders+"?name=bracket&status=DRAFT&status=IN_ENGINEERING", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"total":1`))

		Expect(*query).To(Equal(domain.OrderQuery{Name: "bracket",
			Statuses: []state.OrderStatus{state.StatusDraft, state.StatusInEngineering}}))
	})

	t.Run("should return 500 on service failure", func(t *testing.T) {
		QueryOrdersFunc = func(q *domain.OrderQuery, s *session.Session) (*[]domain.Order, error) {
			return nil, errors.New("some error")
		}

		req := httptest.NewRequest(http.MethodGet, PathOrders, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error", "message":"some error", "data":null}`))
	})
}

func TestHandleUpdateOrder(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterOrdersRestAPI(router)

	t.Run("should return 400 for a bad id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, PathOrders+"/abc", bytes.NewReader([]byte(
			`{"name":"bracket batch","priority":"LOW"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param", "message":"invalid id 'abc'", "data":null}`))
	})

	t.Run("should update name and priority", func(t *testing.T) {
		var updatedId types.ID
		var payload *domain.OrderUpdating
		UpdateOrderFunc = func(id types.ID, u *domain.OrderUpdating, s *session.Session) (*domain.Order, error) {
			updatedId = id
			payload = u
			return &domain.Order{ID: id, Name: u.Name, Priority: u.Priority}, nil
		}

		req := httptest.NewRequest(http.MethodPut, PathOrders+"/100", bytes.NewReader([]byte(
			`{"name":"bracket batch rev2","priority":"URGENT"}`)))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(updatedId).To(Equal(types.ID(100)))
		Expect(*payload).To(Equal(domain.OrderUpdating{Name: "bracket batch rev2", Priority: state.PriorityUrgent}))
	})
}

func TestHandleDeleteOrder(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterOrdersRestAPI(router)

	t.Run("should return 204 on success", func(t *testing.T) {
		var deletedId types.ID
		DeleteOrderFunc = func(id types.ID, s *session.Session) error {
			deletedId = id
			return nil
		}

		req := httptest.NewRequest(http.MethodDelete, PathOrders+"/100", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))
		Expect(body).To(BeZero())
		Expect(deletedId).To(Equal(types.ID(100)))
	})

	t.Run("should return 403 when not permitted", func(t *testing.T) {
		DeleteOrderFunc = func(id types.ID, s *session.Session) error {
			return bizerror.ErrForbidden
		}

		req := httptest.NewRequest(http.MethodDelete, PathOrders+"/100", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"code":"security.forbidden", "message":"access forbidden", "data":null}`))
	})
}

func TestHandleTakeOverEndpoints(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterOrdersRestAPI(router)

	t.Run("take order", func(t *testing.T) {
		var takenId types.ID
		TakeOrderFunc = func(id types.ID, s *session.Session) (*domain.OrderDetail, error) {
			takenId = id
			return &domain.OrderDetail{Order: domain.Order{ID: id, AssignedEngineerID: 2}}, nil
		}

		req := httptest.NewRequest(http.MethodPost, PathOrders+"/100/takeover", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"assignedEngineerId":"2"`))
		Expect(takenId).To(Equal(types.ID(100)))
	})

	t.Run("take conflict is a 409", func(t *testing.T) {
		TakeOrderFunc = func(id types.ID, s *session.Session) (*domain.OrderDetail, error) {
			return nil, bizerror.ErrInvalidState
		}

		req := httptest.NewRequest(http.MethodPost, PathOrders+"/100/takeover", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code":"workflow.invalid_state", "message":"action is not valid for current state", "data":null}`))
	})

	t.Run("return to queue", func(t *testing.T) {
		var returnedId types.ID
		ReturnToQueueFunc = func(id types.ID, s *session.Session) (*domain.OrderDetail, error) {
			returnedId = id
			return &domain.OrderDetail{Order: domain.Order{ID: id, Status: state.StatusReadyForEngineering}}, nil
		}

		req := httptest.NewRequest(http.MethodDelete, PathOrders+"/100/takeover", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(returnedId).To(Equal(types.ID(100)))
	})
}
