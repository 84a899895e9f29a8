// Package boundary carries driver events across a process boundary into a
// foreign runtime. Frames are newline-delimited JSON:
//
//	-> {"id":1,"method":"handle_event","event":{"kind":"EventA","data":{...}}}
//	<- {"id":1,"ok":true}
//	<- {"id":1,"error":{"code":"not_implemented","message":"not implemented"}}
//
// ProcessClient is the driver side; Serve is the host side.
package boundary

import (
	"errors"
	"fmt"

	"eventdriver/internal/driver"
	"eventdriver/pkg/types"
)

// MethodHandleEvent is the only request method.
const MethodHandleEvent = "handle_event"

// Reply error codes.
const (
	CodeNotImplemented = "not_implemented"
	CodeHandlerError   = "handler_error"
	CodeBadRequest     = "bad_request"
)

// Request is one driver-to-host frame.
type Request struct {
	ID     uint64         `json:"id"`
	Method string         `json:"method"`
	Event  types.Envelope `json:"event"`
}

// Reply is one host-to-driver frame.
type Reply struct {
	ID    uint64      `json:"id"`
	OK    bool        `json:"ok,omitempty"`
	Error *ReplyError `json:"error,omitempty"`
}

// ReplyError describes a failed remote handler.
type ReplyError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	// ErrProcessExited reports that the host process is gone.
	ErrProcessExited = errors.New("host process exited")
	// ErrReplyTimeout reports that the host did not answer in time.
	ErrReplyTimeout = errors.New("host reply timeout")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("process client closed")
)

// RemoteError is a failure reported by the host. A not_implemented code
// unwraps to driver.ErrNotImplemented.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "remote " + e.Code
	}
	return fmt.Sprintf("remote %s: %s", e.Code, e.Message)
}

func (e *RemoteError) Unwrap() error {
	if e.Code == CodeNotImplemented {
		return driver.ErrNotImplemented
	}
	return nil
}

// IsRemote reports whether err was produced by the host's handler.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

func replyErr(r Reply) error {
	if r.Error == nil {
		if r.OK {
			return nil
		}
		return &RemoteError{Code: CodeHandlerError, Message: "reply carries neither ok nor error"}
	}
	return &RemoteError{Code: r.Error.Code, Message: r.Error.Message}
}
