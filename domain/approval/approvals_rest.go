package approval

import (
	"errors"
	"net/http"
	"voltflow/bizerror"
	"voltflow/domain"
	"voltflow/misc"
	"voltflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterApprovalsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/deadline-approvals", middleWares...)
	g.GET("", handleQueryApprovals)
	g.GET("pending-admin", handleQueryPendingAdmin)
	g.GET("pending-client", handleQueryPendingClient)
	g.GET("my-requests", handleQueryMyRequests)
	g.GET("stats", handleQueryApprovalStats)
	g.POST("", handleCreateApproval)
	g.GET(":id", handleDetailApproval)
	g.PUT(":id/admin-decision", handleAdminDecide)
	g.PUT(":id/client-decision", handleClientDecide)
	g.DELETE(":id", handleCancelApproval)
}

func handleQueryApprovals(c *gin.Context) {
	query := domain.DeadlineApprovalQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	records, err := QueryApprovalsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}

func handleQueryPendingAdmin(c *gin.Context) {
	records, err := QueryPendingAdminFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}

func handleQueryPendingClient(c *gin.Context) {
	records, err := QueryPendingClientFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}

func handleQueryMyRequests(c *gin.Context) {
	records, err := QueryMyRequestsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}

func handleQueryApprovalStats(c *gin.Context) {
	stats, err := QueryApprovalStatsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, stats)
}

func handleCreateApproval(c *gin.Context) {
	creation := domain.DeadlineApprovalCreating{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := CreateApprovalFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleDetailApproval(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	record, err := DetailApprovalFunc(parsedId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleAdminDecide(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	decision := domain.AdminDecision{}
	if err := c.ShouldBindBodyWith(&decision, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := AdminDecideFunc(parsedId, &decision, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleClientDecide(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	decision := domain.ClientDecision{}
	if err := c.ShouldBindBodyWith(&decision, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := ClientDecideFunc(parsedId, &decision, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleCancelApproval(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	if err := CancelApprovalFunc(parsedId, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
