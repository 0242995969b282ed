// Dlpc350-ctl controls a DLPC350 (LightCrafter 4500) projector controller.
//
// It reads and writes controller registers, switches display modes and
// uploads, validates and runs pattern sequences stored in the user's
// configuration file. The controller is reached over USB HID, a serial
// bridge or a WebSocket bridge started with dlpc350-bridge.
//
// Usage:
//
//	dlpc350-ctl [command] [flags]
//
// See 'dlpc350-ctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lightcrafter/dlpc350/internal/logging"
	"github.com/lightcrafter/dlpc350/internal/urls"
	"github.com/lightcrafter/dlpc350/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dlpc350-ctl",
	Short: "DLPC350 Projector Controller Utility",
	Long: `Control a DLPC350 / LightCrafter 4500 projector controller.

Reads device status, configures LEDs and the input source, and uploads
pattern sequences defined in the configuration file.

The connection comes from the configuration file and can be overridden
with --hid, --serial, --url or --emulate.

Command reference: ` + urls.ProgrammersGuide,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("dlpc350-ctl", version.Full())
	},
}
