package order

import (
	"errors"
	"net/http"

	"fabline/bizerror"
	"fabline/domain"
	"fabline/misc"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathOrders = "/v1/orders"

func RegisterOrdersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathOrders, middleWares...)
	g.GET("", handleQueryOrders)
	g.POST("", handleCreateOrder)
	g.GET(":id", handleDetailOrder)
	g.PUT(":id", handleUpdateOrder)
	g.DELETE(":id", handleDeleteOrder)

	g.GET(":id/status-records", handleQueryStatusHistory)
	g.GET(":id/actions", handleAvailableActions)
	g.GET(":id/readiness", handleGateReadiness)
	g.GET(":id/comments", handleListComments)

	g.POST(":id/takeover", handleTakeOrder)
	g.DELETE(":id/takeover", handleReturnToQueue)
	g.DELETE(":id/assigned-engineer", handleClearEngineer)
	g.DELETE(":id/assigned-manager", handleClearManager)
}

func handleQueryOrders(c *gin.Context) {
	query := domain.OrderQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	orders, err := QueryOrdersFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: orders, Total: uint64(len(*orders))})
}

func handleCreateOrder(c *gin.Context) {
	creation := domain.OrderCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	detail, err := CreateOrderFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}

func handleDetailOrder(c *gin.Context) {
	detail, err := DetailOrderFunc(c.Param("id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleUpdateOrder(c *gin.Context) {
	id := parseId(c)
	updating := domain.OrderUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	order, err := UpdateOrderFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, order)
}

func handleDeleteOrder(c *gin.Context) {
	id := parseId(c)
	if err := DeleteOrderFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleQueryStatusHistory(c *gin.Context) {
	id := parseId(c)
	records, err := QueryStatusHistoryFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleAvailableActions(c *gin.Context) {
	id := parseId(c)
	actions, err := AvailableActionsFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, actions)
}

func handleGateReadiness(c *gin.Context) {
	id := parseId(c)
	gate := c.Query("gate")
	readiness, err := EvaluateGateReadinessFunc(id, gate, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, readiness)
}

func handleListComments(c *gin.Context) {
	id := parseId(c)
	comments, err := ListCommentsFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, comments)
}

func handleTakeOrder(c *gin.Context) {
	id := parseId(c)
	detail, err := TakeOrderFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleReturnToQueue(c *gin.Context) {
	id := parseId(c)
	detail, err := ReturnToQueueFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleClearEngineer(c *gin.Context) {
	id := parseId(c)
	detail, err := ClearEngineerFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleClearManager(c *gin.Context) {
	id := parseId(c)
	detail, err := ClearManagerFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func parseId(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return id
}
