// Command reactorgraph compiles and drives reactorgraph topologies
// from the command line: compile validates a topology file, run
// evaluates it once and prints results, bench times repeated
// evaluation, grounded on the spf13/cobra root-command wiring in
// jinterlante1206-AleutianLocal's cmd/aleutian.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var log = slog.Default()

var rootCmd = &cobra.Command{
	Use:   "reactorgraph",
	Short: "Compile and evaluate reactorgraph dataflow topologies",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("reactorgraph: command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(compileCmd, runCmd, benchCmd, opsCmd)
}
