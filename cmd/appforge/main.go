// Command appforge detects applications newly declared in the registry and
// propagates their scaffolding to dependent repositories.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	apperrors "github.com/randalmurphal/appforge/errors"
)

// Build information injected via ldflags at build time.
var version = "dev"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root, c := newRootCmd(stdout, stderr)
	defer c.sync()
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		err = apperrors.Wrap(err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return apperrors.ExitCode(err)
	}
	return apperrors.ExitOK
}
