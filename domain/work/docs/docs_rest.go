package docs

import (
	"errors"
	"io"
	"net/http"
	"voltflow/bizerror"
	"voltflow/misc"
	"voltflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

func RegisterWorkDocumentsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/works/:id/documents", middleWares...)
	g.GET("", handleListWorkDocuments)
	g.POST("", handleUploadWorkDocument)
	g.GET(":name", handleDownloadWorkDocument)
}

func parseWorkId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}

func handleListWorkDocuments(c *gin.Context) {
	names, err := ListWorkDocumentsFunc(parseWorkId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: names, Total: uint64(len(names))})
}

func handleUploadWorkDocument(c *gin.Context) {
	workId := parseWorkId(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	file, err := fileHeader.Open()
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	defer file.Close()

	if err := UploadWorkDocumentFunc(workId, fileHeader.Filename, file, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, gin.H{"name": fileHeader.Filename})
}

func handleDownloadWorkDocument(c *gin.Context) {
	workId := parseWorkId(c)
	name := c.Param("name")

	reader, err := DownloadWorkDocumentFunc(workId, name, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		panic(err)
	}
}
