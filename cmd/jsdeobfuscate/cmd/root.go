// Package cmd implements the jsdeobfuscate command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "jsdeobfuscate",
	Short: "Deobfuscate string-array-encoded JavaScript",
	Long: `jsdeobfuscate rewrites a JavaScript file produced by a string-array
obfuscator back into readable source: it folds constant expressions,
prunes always-false branches, inlines single-use self-invoking wrappers
and object property clusters, and resolves a located string-table
decoder's call sites against a sandboxed evaluator.`,
}

// Execute runs the root command. Called once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default none; JSD_* env vars and flags still apply)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
