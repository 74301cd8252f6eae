package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tonimelisma/adls-go/internal/outcome"
)

// Exit codes. Authorization denials get their own code so scripts can tell
// a permissions problem from a broken transfer.
const (
	exitFailure             = 1
	exitAuthorizationDenied = 3
)

func main() {
	ctx := interruptContext(context.Background(), bootstrapLogger())

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		exitOnError(err)
	}
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if errors.Is(err, outcome.ErrAuthorizationDenied) {
		return exitAuthorizationDenied
	}

	return exitFailure
}
