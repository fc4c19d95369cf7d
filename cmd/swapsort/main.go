package main

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/swapsort/internal/cli"
	"github.com/matzehuels/swapsort/pkg/errors"
)

// Process exit statuses.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2   // bad flags, config file or output path
	exitInterrupted = 130 // shell convention for SIGINT
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.New(os.Stderr, cli.LogInfo).RootCommand().ExecuteContext(ctx)
	cancel()
	os.Exit(exitCode(os.Stderr, err))
}

// exitCode reports err on w and maps it to a process status. An interrupted
// sort has already saved and reported its final checkpoint, so it is not
// reported again.
func exitCode(w io.Writer, err error) int {
	switch {
	case err == nil:
		return exitOK
	case goerrors.Is(err, context.Canceled):
		return exitInterrupted
	}
	fmt.Fprintln(w, "Error:", err)
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidPath:
		return exitUsage
	}
	return exitFailure
}
