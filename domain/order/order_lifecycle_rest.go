package order

import (
	"net/http"

	"fabline/bizerror"
	"fabline/domain"
	"fabline/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathOrderStatusTransitions = "/v1/order-status-transitions"
	PathEngineerAssignments    = "/v1/engineer-assignments"
	PathManagerAssignments     = "/v1/manager-assignments"
	PathChecklistMarks         = "/v1/checklist-marks"
	PathComments               = "/v1/comments"
)

func RegisterOrderStatusTransitionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathOrderStatusTransitions, middleWares...)
	g.POST("", handleTransitOrderStatus)
}

func RegisterAssignmentsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	e := r.Group(PathEngineerAssignments, middleWares...)
	e.POST("", handleAssignEngineer)

	m := r.Group(PathManagerAssignments, middleWares...)
	m.POST("", handleAssignManager)
}

func RegisterChecklistMarksRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathChecklistMarks, middleWares...)
	g.PUT("", handleSetChecklistMark)
}

func RegisterCommentsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathComments, middleWares...)
	g.POST("", handleCreateComment)
}

func handleTransitOrderStatus(c *gin.Context) {
	updating := domain.OrderStatusUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	detail, err := TransitOrderStatusFunc(&updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleAssignEngineer(c *gin.Context) {
	updating := domain.AssignmentUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	detail, err := AssignEngineerFunc(&updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleAssignManager(c *gin.Context) {
	updating := domain.AssignmentUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	detail, err := AssignManagerFunc(&updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleSetChecklistMark(c *gin.Context) {
	updating := domain.ChecklistMarkUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := SetChecklistMarkFunc(&updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleCreateComment(c *gin.Context) {
	creation := domain.CommentCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	comment, err := CreateCommentFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, comment)
}
