// Xbusd is a host-side tool for Xsens MTi series inertial sensors.
//
// It connects to a device over a serial-to-TCP bridge, decodes the Xbus
// binary protocol into structured telemetry, and republishes the stream
// to WebSocket clients. Additional commands cover bridge discovery, a
// live terminal view, offline frame decoding, and sending raw commands.
//
// Usage:
//
//	xbusd [command] [flags]
//
// See 'xbusd --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/xbusd/internal/logging"
	"github.com/muurk/xbusd/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "xbusd",
	Short: "Xbus telemetry daemon and toolkit",
	Long: `Host-side tooling for Xsens MTi series inertial sensors.

xbusd decodes the Xbus binary protocol from a serial-over-TCP bridge and
republishes structured telemetry over WebSocket. It also provides bridge
discovery, a live terminal view, offline frame decoding, and raw command
sending.

Set XBUSD_LOG_LEVEL (debug, info, warn, error) for diagnostic output.`,
	Version: version.Version,
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
		fmt.Printf("xbusd %s (commit: %s)\n", version.Version, version.Commit)
	},
}
