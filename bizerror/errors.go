package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrTooManyRequests = errors.New("too many requests")

	ErrStatusTransitionInvalid  = errors.New("status transition invalid")
	ErrApprovalAlreadyProcessed = errors.New("approval already processed")
	ErrApprovalNotYetApproved   = errors.New("approval not yet approved internally")
	ErrConfigExisted            = errors.New("workflow config existed")
	ErrClientIdentifierExisted  = errors.New("client identifier existed")
	ErrArchiveStatusInvalid     = errors.New("archive status invalid")
	ErrProgressOutOfRange       = errors.New("progress out of range")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}
