package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"voltflow/misc"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = errors.New(fmt.Sprintf("%s", ret))
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	logrus.Error(err)

	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	if bizErr, ok := genericErr.(BizError); ok {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &misc.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request: io.EOF (no body)
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	// bad request: json syntax error
	if syntaxErr, ok := genericErr.(*json.SyntaxError); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	// validation failed
	if validationErr, ok := genericErr.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}

	if errors.Is(genericErr, ErrUnauthenticated) {
		c.JSON(http.StatusUnauthorized, &misc.ErrorBody{Code: "common.unauthenticated", Message: "unauthenticated"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrForbidden) {
		c.JSON(http.StatusForbidden, &misc.ErrorBody{Code: "security.forbidden", Message: "access forbidden"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrTooManyRequests) {
		c.JSON(http.StatusTooManyRequests, &misc.ErrorBody{Code: "common.too_many_requests", Message: "too many requests"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrStatusTransitionInvalid) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "workflow.status_transition_invalid", Message: "status transition invalid"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrApprovalAlreadyProcessed) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "approval.already_processed", Message: "approval already processed"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrApprovalNotYetApproved) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "approval.not_yet_approved", Message: "approval not yet approved internally"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrConfigExisted) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "workflow.config_existed", Message: "workflow config existed"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrClientIdentifierExisted) {
		c.JSON(http.StatusConflict, &misc.ErrorBody{Code: "client.identifier_existed", Message: "client identifier existed"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrArchiveStatusInvalid) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "work.archive_status_invalid", Message: "archive status invalid"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrProgressOutOfRange) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "task.progress_out_of_range", Message: "progress out of range"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, gorm.ErrRecordNotFound) || errors.Is(genericErr, ErrNotFound) {
		c.JSON(http.StatusNotFound, &misc.ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		c.Abort()
		return
	}

	c.JSON(http.StatusInternalServerError, &misc.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}
