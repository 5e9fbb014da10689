package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via -ldflags "-X ...cmd.version=..." at release build
// time; left at "dev" for a plain `go build`.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the jsdeobfuscate version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}
