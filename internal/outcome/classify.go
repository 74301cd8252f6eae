package outcome

import (
	"errors"
	"net/http"

	"github.com/tonimelisma/adls-go/internal/adls"
)

// Classify maps a failed remote write to a typed outcome. A 403 from the
// store becomes AuthorizationDenied unless the store used it to reject
// creating a file that already exists. Everything else becomes
// TransferFailure with the message preserved verbatim. An error that is
// already an *Error is returned as is. Classify(nil) returns nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var remoteErr *adls.RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.StatusCode == http.StatusForbidden && !errors.Is(remoteErr, adls.ErrAlreadyExists) {
			return AuthorizationDenied(remoteErr.Message, err)
		}

		return TransferFailure(remoteErr.StatusCode, remoteErr.Message, err)
	}

	return TransferFailure(0, err.Error(), err)
}
