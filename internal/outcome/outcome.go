// Package outcome defines the closed set of typed errors an upload can end
// with, and Classify, which maps raw remote-write failures onto that set.
// It is a leaf package shared by the credential broker and the uploader so
// both produce the same error values.
package outcome

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind sentinels. Every *Error unwraps to exactly one of these, so
// errors.Is(err, outcome.ErrAuthorizationDenied) identifies the kind.
var (
	ErrUnsupportedAccountKind = errors.New("unsupported storage account kind")
	ErrAuthenticationFailure  = errors.New("authentication failed")
	ErrAuthorizationDenied    = errors.New("authorization denied")
	ErrTransferFailure        = errors.New("transfer failed")
)

// RemediationHint is attached to every AuthorizationDenied error.
const RemediationHint = "This problem could be: " +
	"1. Attached Azure Data Lake Store is not supported in automated login mode; " +
	"log out and sign in again with interactive login. " +
	"2. The login account (or the service principal the storage was attached with) " +
	"has no write permission on the attached Data Lake Store; " +
	"ask the storage account admin to grant it write access."

// Error is a failed upload outcome. StatusCode is zero when no HTTP status
// was involved. Remediation is set only for AuthorizationDenied.
type Error struct {
	Kind        error
	StatusCode  int
	Message     string
	Remediation string
	Err         error // underlying cause, may be nil
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.Error())

	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	if e.Remediation != "" {
		b.WriteString("\n")
		b.WriteString(e.Remediation)
	}

	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// UnsupportedAccountKind reports a descriptor that cannot be uploaded to.
func UnsupportedAccountKind(kind fmt.Stringer) *Error {
	return &Error{
		Kind:    ErrUnsupportedAccountKind,
		Message: fmt.Sprintf("storage account kind %q cannot be written to; a certificate-backed Data Lake Store account is required", kind),
	}
}

// AuthenticationFailure reports a token issuer rejection, an unreachable
// issuer, or unusable certificate material.
func AuthenticationFailure(message string, err error) *Error {
	return &Error{
		Kind:    ErrAuthenticationFailure,
		Message: message,
		Err:     err,
	}
}

// AuthorizationDenied reports a 403 from the store.
func AuthorizationDenied(message string, err error) *Error {
	return &Error{
		Kind:        ErrAuthorizationDenied,
		StatusCode:  http.StatusForbidden,
		Message:     message,
		Remediation: RemediationHint,
		Err:         err,
	}
}

// TransferFailure reports any other failure while opening, writing or
// flushing the remote file.
func TransferFailure(statusCode int, message string, err error) *Error {
	return &Error{
		Kind:       ErrTransferFailure,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}
