// Package adls provides an HTTP client for the Azure Data Lake Store
// WebHDFS-compatible REST API: create-with-policy, buffered append writes,
// flush and close, with error classification by HTTP status.
package adls

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, adls.ErrForbidden) to check.
var (
	ErrBadRequest    = errors.New("adls: bad request")
	ErrUnauthorized  = errors.New("adls: unauthorized")
	ErrForbidden     = errors.New("adls: forbidden")
	ErrNotFound      = errors.New("adls: not found")
	ErrAlreadyExists = errors.New("adls: file already exists")
	ErrThrottled     = errors.New("adls: throttled")
	ErrServerError   = errors.New("adls: server error")
	ErrClosed        = errors.New("adls: write on closed file")
)

// exceptionAlreadyExists is the RemoteException name the store returns
// (with status 403) when op=CREATE&overwrite=false hits an existing path.
const exceptionAlreadyExists = "FileAlreadyExistsException"

// RemoteError wraps a sentinel error with the HTTP status code, request ID,
// the remote exception name and the service's message for debugging.
type RemoteError struct {
	StatusCode int
	RequestID  string
	Exception  string // RemoteException.exception, empty when the body was not JSON
	Message    string // RemoteException.message, or the raw body
	Err        error  // sentinel, for errors.Is()
}

func (e *RemoteError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("adls: HTTP %d (request-id: %s): %s", e.StatusCode, e.RequestID, e.Message)
	}

	return fmt.Sprintf("adls: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// remoteExceptionBody is the JSON error envelope returned by WebHDFS.
type remoteExceptionBody struct {
	RemoteException struct {
		Exception     string `json:"exception"`
		Message       string `json:"message"`
		JavaClassName string `json:"javaClassName"`
	} `json:"RemoteException"`
}

// newRemoteError builds a RemoteError from a non-2xx response. body is the
// already-read response body.
func newRemoteError(resp *http.Response, body []byte) *RemoteError {
	re := &RemoteError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("x-ms-request-id"),
		Message:    string(body),
	}

	var envelope remoteExceptionBody
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.RemoteException.Message != "" {
		re.Exception = envelope.RemoteException.Exception
		re.Message = envelope.RemoteException.Message
	}

	if re.Message == "" {
		re.Message = http.StatusText(resp.StatusCode)
	}

	re.Err = classifyStatus(resp.StatusCode, re.Exception)

	return re
}

// classifyStatus maps an HTTP status code and remote exception name to a
// sentinel error. Returns nil for codes with no sentinel.
func classifyStatus(code int, exception string) error {
	if exception == exceptionAlreadyExists {
		return ErrAlreadyExists
	}

	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrAlreadyExists
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}
