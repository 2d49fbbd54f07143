package main

import (
	"fmt"
	"os"

	"github.com/iudanet/thoughtbook/internal/client/cmd"
)

var (
	// Version information set via ldflags during build
	Version   = "1.0.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	root := cmd.NewRootCmd(cmd.BuildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
