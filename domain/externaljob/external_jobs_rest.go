package externaljob

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

var (
	PathExternalJobs                 = "/v1/external-jobs"
	PathExternalJobStatusTransitions = "/v1/external-job-status-transitions"
)

func RegisterExternalJobsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathExternalJobs, middleWares...)
	g.GET("", handleListExternalJobs)
	g.POST("", handleCreateExternalJob)
	g.GET(":id", handleDetailExternalJob)
	g.PUT(":id", handleUpdateExternalJob)
	g.GET(":id/status-records", handleQueryStatusHistory)

	o := r.Group("/v1/overdue-external-jobs", middleWares...)
	o.GET("", handleQueryOverdueExternalJobs)

	t := r.Group(PathExternalJobStatusTransitions, middleWares...)
	t.POST("", handleTransitExternalJobStatus)
}

type externalJobQuery struct {
	OrderID types.ID `form:"orderId" binding:"required"`
}

func handleListExternalJobs(c *gin.Context) {
	query := externalJobQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	jobs, err := ListExternalJobsFunc(query.OrderID, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: jobs, Total: uint64(len(jobs))})
}

func handleCreateExternalJob(c *gin.Context) {
	creation := domain.ExternalJobCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	detail, err := CreateExternalJobFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}

func handleDetailExternalJob(c *gin.Context) {
	id := parseId(c)
	detail, err := DetailExternalJobFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleUpdateExternalJob(c *gin.Context) {
	id := parseId(c)
	updating := domain.ExternalJobUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	job, err := UpdateExternalJobFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, job)
}

func handleQueryStatusHistory(c *gin.Context) {
	id := parseId(c)
	records, err := QueryStatusHistoryFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleQueryOverdueExternalJobs(c *gin.Context) {
	jobs, err := QueryOverdueExternalJobsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: jobs, Total: uint64(len(jobs))})
}

func handleTransitExternalJobStatus(c *gin.Context) {
	updating := domain.ExternalJobStatusUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	detail, err := TransitExternalJobStatusFunc(&updating, session.ExtractSessionFromGinContext(c))
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
