package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lightcrafter/dlpc350/internal/transport"
)

func init() {
	rootCmd.AddCommand(devicesCmd)
}

// usbDevice is one enumerated controller
type usbDevice struct {
	Index        int    `json:"index"`
	Path         string `json:"path"`
	Serial       string `json:"serial,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Product      string `json:"product,omitempty"`
	Interface    int    `json:"interface"`
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List LightCrafter controllers attached over USB",
	Long: `List USB HID devices with the LightCrafter 4500 vendor and product
id. Pass the index to --usb-index to talk to a controller other than
the first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos := transport.AttachedDevices(transport.VendorID, transport.ProductID)

		devices := make([]usbDevice, len(infos))
		for i, info := range infos {
			devices[i] = usbDevice{
				Index:        i,
				Path:         info.Path,
				Serial:       info.Serial,
				Manufacturer: info.Manufacturer,
				Product:      info.Product,
				Interface:    info.Interface,
			}
		}

		if outputFormat == "json" {
			return printJSON(devices)
		}
		if len(devices) == 0 {
			fmt.Printf("No %04x:%04x devices found.\n", transport.VendorID, transport.ProductID)
			return nil
		}
		for _, d := range devices {
			fmt.Printf("%d  %-32s %s %s\n", d.Index, d.Path, d.Product, d.Serial)
		}
		return nil
	},
}
