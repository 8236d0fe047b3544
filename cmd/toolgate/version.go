package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jkaninda/toolgate/internal/server"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("toolgate %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func init() {
	server.Version = version
}
