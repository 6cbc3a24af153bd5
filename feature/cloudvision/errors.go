package cloudvision

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cvsync/core/reconcile"

	"google.golang.org/grpc/codes"
)

// ErrAuth reports missing or rejected credentials.
var ErrAuth = errors.New("cloudvision authentication failed")

// APIError is an error returned by the CloudVision API. Resource API errors
// carry gRPC status codes; plain HTTP failures are mapped onto the closest code.
type APIError struct {
	Status  int        `json:"status"`
	Code    codes.Code `json:"code"`
	Message string     `json:"message"`
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("cloudvision: %s (http %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("cloudvision: %s: %s", e.Code, e.Message)
}

// Unwrap exposes the reconcile sentinel matching the status code so callers
// can classify with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case codes.AlreadyExists:
		return reconcile.ErrAlreadyExists
	case codes.FailedPrecondition:
		return reconcile.ErrDependencyExists
	case codes.NotFound:
		return reconcile.ErrNotFound
	case codes.InvalidArgument:
		return reconcile.ErrValidation
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrAuth
	}
	return nil
}

// transient reports whether the error says something about the service's
// health rather than about the request.
func (e *APIError) transient() bool {
	switch e.Code {
	case codes.Unavailable, codes.Internal, codes.Unknown, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	}
	return false
}

// rpcStatus is the JSON form of a google.rpc.Status.
type rpcStatus struct {
	Code    codes.Code `json:"code"`
	Message string     `json:"message"`
}

// parseError builds an APIError from a failed response body. Bodies are
// either a bare status, a status wrapped in "error", or free text.
func parseError(status int, body []byte) *APIError {
	var wrapped struct {
		Error *rpcStatus `json:"error"`
		rpcStatus
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if wrapped.Error != nil {
			return &APIError{Status: status, Code: wrapped.Error.Code, Message: wrapped.Error.Message}
		}
		if wrapped.Code != codes.OK || wrapped.Message != "" {
			code := wrapped.Code
			if code == codes.OK {
				code = codeFromStatus(status)
			}
			return &APIError{Status: status, Code: code, Message: wrapped.Message}
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Code: codeFromStatus(status), Message: msg}
}

func codeFromStatus(status int) codes.Code {
	switch status {
	case http.StatusBadRequest:
		return codes.InvalidArgument
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusConflict:
		return codes.AlreadyExists
	case http.StatusPreconditionFailed:
		return codes.FailedPrecondition
	case http.StatusTooManyRequests:
		return codes.ResourceExhausted
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return codes.Unavailable
	case http.StatusGatewayTimeout:
		return codes.DeadlineExceeded
	}
	if status >= 500 {
		return codes.Internal
	}
	return codes.Unknown
}
