package util

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/foldersync/pkg/errors"
)

// Mocked for unit testing.
var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// HandleFatalError prints the error and exits. Errors that carry a friendly
// message are printed without their context.
func HandleFatalError(err error) {
	log.WithError(err).Debug("Fatal error")
	fmt.Fprintln(stderr, FatalMessage(err))
	exit(1)
}

// FatalMessage returns the message shown to the user for `err`.
func FatalMessage(err error) string {
	if friendly, ok := errors.RootCause(err).(errors.FriendlyMessager); ok {
		return friendly.FriendlyMessage()
	}
	return fmt.Sprintf("Error: %s", err)
}

// HandlePanic logs the stack trace of a panic before exiting. It must be
// deferred.
func HandlePanic() {
	if r := recover(); r != nil {
		log.WithField("panic", r).Errorf("Unexpected panic\n%s", debug.Stack())
		fmt.Fprintf(stderr, "Unexpected error: %v\n", r)
		exit(1)
	}
}
