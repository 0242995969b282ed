package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/config"
	"github.com/lightcrafter/dlpc350/internal/discovery"
	"github.com/lightcrafter/dlpc350/internal/logging"
	"github.com/lightcrafter/dlpc350/internal/ui"
)

var (
	scanWait time.Duration
	scanUse  string
)

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().DurationVar(&scanWait, "wait", discovery.DefaultScanTimeout, "How long to listen for bridges")
	scanCmd.Flags().StringVar(&scanUse, "use", "", "Save the bridge with this instance name as the default connection")
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find packet bridges on the local network",
	Long: `Browse mDNS for dlpc350-bridge instances. A bridge exposes a
controller attached to another machine over WebSocket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if scanUse != "" {
			return useBridge(scanUse)
		}

		ui.PrintPleaseWait("Scanning for bridges", "up to "+scanWait.String())

		bridges, err := discovery.ScanForBridges(scanWait)
		if err != nil {
			return err
		}
		logging.Debug("bridge scan finished", zap.Int("bridges", len(bridges)))

		if len(bridges) == 0 {
			fmt.Println("No bridges found.")
			return nil
		}

		if outputFormat == "json" {
			return printJSON(bridges)
		}
		for _, b := range bridges {
			version := b.GetMetadata(discovery.TXTVersion)
			if version == "" {
				version = "unknown"
			}
			fmt.Printf("%-24s %-40s version %s\n", b.Instance, b.URL(), version)
		}
		return nil
	},
}

// useBridge waits for one bridge and saves it as the default connection
func useBridge(instance string) error {
	ui.PrintPleaseWait("Waiting for bridge "+instance, "up to "+scanWait.String())

	scanner := discovery.NewScanner()
	scanner.Timeout = scanWait
	b, err := scanner.WaitForBridge(instance)
	if err != nil {
		return err
	}

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	reg.Connection = &config.Connection{Kind: config.KindWebSocket, URL: b.URL()}
	if err := saveRegistry(reg); err != nil {
		return err
	}
	fmt.Printf("Default connection set to %s\n", b.URL())
	return nil
}
