// Package cmd provides the command-line interface of audren.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// Version is set at link time.
var Version = "dev"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "audren",
	Short: "audren replays guest sessions against the effect renderer.",
	Long: `audren replays guest sessions described in YAML against the ` +
		`effect renderer and prints the command view of every frame. ` +
		`Defaults can be set in a .env file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Cannot read .env: %v\n", err)
	}

	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
