package attachment

import (
	"errors"
	"net/http"

	"fabline/bizerror"
	"fabline/misc"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var PathAttachments = "/v1/attachments"

func RegisterAttachmentsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAttachments, middleWares...)
	g.GET("", handleListAttachments)
	g.POST("", handleCreateAttachment)
	g.GET(":id/content", handleDownloadAttachment)
	g.DELETE(":id", handleDeleteAttachment)
}

type attachmentQuery struct {
	OwnerType string   `form:"ownerType" binding:"required,oneof=ORDER EXTERNAL_JOB"`
	OwnerID   types.ID `form:"ownerId" binding:"required"`
}

func handleListAttachments(c *gin.Context) {
	query := attachmentQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := ListAttachmentsFunc(query.OwnerType, query.OwnerID, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(records))})
}

func handleCreateAttachment(c *gin.Context) {
	creation := AttachmentCreation{}
	if err := c.ShouldBind(&creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	file, err := c.FormFile("file")
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	src, err := file.Open()
	if err != nil {
		panic(err)
	}
	defer src.Close()

	record, err := CreateAttachmentFunc(&creation, file.Filename, src, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleDownloadAttachment(c *gin.Context) {
	id := parseId(c)
	record, bytes, err := DownloadAttachmentFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.Header("Content-Disposition", `attachment; filename="`+record.FileName+`"`)
	c.Data(http.StatusOK, "application/octet-stream", bytes)
}

func handleDeleteAttachment(c *gin.Context) {
	id := parseId(c)
	if err := DeleteAttachmentFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func parseId(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return id
}
