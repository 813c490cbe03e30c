// File: cmd/doclint/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/canvasforge/doclint/cmd"
	"github.com/canvasforge/doclint/internal/observability"
)

const panicLogFile = "doclint-panic.log"

// Exit statuses.
const (
	exitOK       = 0
	exitProblems = 1
	exitFailure  = 2
)

// Function variables allow mocking in tests.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
)

func main() {
	defer handlePanic()

	// Cancel the run on SIGINT/SIGTERM; lint stops between batches.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	osExit(exitCode(cmd.Execute(ctx)))
}

// exitCode maps the error of a command run onto the process status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, cmd.ErrProblemsFound):
		return exitProblems
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Interrupted.")
		return exitFailure
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitFailure
	}
}

// handlePanic records an unrecovered panic in panicLogFile and exits.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()

	panicMessage := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := osWriteFile(panicLogFile, []byte(panicMessage), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to write panic log: %v\n", err)
		fmt.Fprintf(os.Stderr, "Panic details:\n%s\n", panicMessage)
		osExit(exitFailure)
		return
	}
	fmt.Fprintf(os.Stderr, "doclint crashed. Details logged to %s\n", panicLogFile)
	osExit(exitFailure)
}
