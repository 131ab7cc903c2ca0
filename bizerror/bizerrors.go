package bizerror

import (
	"errors"
	"fmt"
	"net/http"

	"fabline/domain/readiness"
	"fabline/domain/state"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("record not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrUnknownStatus   = errors.New("unknown status")
	ErrNoActiveRuleset = errors.New("no active ruleset")
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

// ErrNotReady rejects a gated forward transition, carrying the unmet
// criteria so callers can render actionable feedback
type ErrNotReady struct {
	Gate    state.Gate        `json:"gate"`
	Missing readiness.Missing `json:"missing"`
}

func (e *ErrNotReady) Error() string {
	return fmt.Sprintf("gate %s is not satisfied", e.Gate)
}
func (e *ErrNotReady) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusConflict, Code: "workflow.not_ready", Message: e.Error(), Data: e}
}

// ErrInsufficientAttachments rejects an external job status change
type ErrInsufficientAttachments struct {
	Status    state.ExternalJobStatus `json:"status"`
	Shortfall int                     `json:"shortfall"`
}

func (e *ErrInsufficientAttachments) Error() string {
	return fmt.Sprintf("status %s requires %d more attachment(s)", e.Status, e.Shortfall)
}
func (e *ErrInsufficientAttachments) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusConflict, Code: "workflow.insufficient_attachments", Message: e.Error(), Data: e}
}

var _ BizError = (*ErrBadParam)(nil)
var _ BizError = (*ErrNotReady)(nil)
var _ BizError = (*ErrInsufficientAttachments)(nil)
