package main

import (
	"fmt"
)

// set with -ldflags at build time
var (
	BuildTag    = "dev"
	BuildCommit = "none"
)

func versionCommand(ui UI) error {
	_, err := fmt.Fprintf(ui.Out, "segparse version %s (commit: %s)\n", BuildTag, BuildCommit)
	return err
}
