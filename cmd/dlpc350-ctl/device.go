package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lightcrafter/dlpc350/internal/dlpc350"
	"github.com/lightcrafter/dlpc350/internal/ui"
)

var outputFormat string

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(powerCmd)
	rootCmd.AddCommand(displayCmd)
	rootCmd.AddCommand(ledCmd)
	rootCmd.AddCommand(inputCmd)
	rootCmd.AddCommand(testPatternCmd)
	rootCmd.AddCommand(flashImageCmd)
}

// withSession opens the device for the duration of fn
func withSession(fn func(s *session) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// printJSON writes v as indented JSON
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// deviceReport is everything the status command reads
type deviceReport struct {
	Connection string                 `json:"connection"`
	Version    string                 `json:"version"`
	Firmware   string                 `json:"firmware_tag"`
	Images     uint8                  `json:"images_in_flash"`
	Hardware   dlpc350.HardwareStatus `json:"hardware"`
	System     dlpc350.SystemStatus   `json:"system"`
	Main       dlpc350.MainStatus     `json:"main"`
	Power      string                 `json:"power"`
	Display    string                 `json:"display"`
	Input      string                 `json:"input"`
	LEDs       dlpc350.LEDEnable      `json:"led_enable"`
	Current    dlpc350.LEDCurrent     `json:"led_current"`
}

func readReport(s *session) (*deviceReport, error) {
	d := s.driver
	r := &deviceReport{Connection: s.Label()}

	v, err := d.GetVersion()
	if err != nil {
		return nil, err
	}
	r.Version = v.App.String()
	if r.Firmware, err = d.GetFirmwareTag(); err != nil {
		return nil, err
	}
	if r.Images, err = d.GetNumImagesInFlash(); err != nil {
		return nil, err
	}
	if r.Hardware, err = d.GetHardwareStatus(); err != nil {
		return nil, err
	}
	if r.System, err = d.GetSystemStatus(); err != nil {
		return nil, err
	}
	if r.Main, err = d.GetMainStatus(); err != nil {
		return nil, err
	}
	power, err := d.GetPowerMode()
	if err != nil {
		return nil, err
	}
	r.Power = power.String()
	display, err := d.GetDisplayMode()
	if err != nil {
		return nil, err
	}
	r.Display = display.String()
	input, err := d.GetInputSource()
	if err != nil {
		return nil, err
	}
	r.Input = input.Type.String() + " " + input.BitDepth.String()
	if r.LEDs, err = d.GetLEDEnable(); err != nil {
		return nil, err
	}
	if r.Current, err = d.GetLEDCurrent(); err != nil {
		return nil, err
	}
	return r, nil
}

// statusPanel lays the report out for the terminal
func statusPanel(r *deviceReport) *ui.Panel {
	p := ui.NewPanel("Device Status")

	p.AddSection("Device").
		Add("Connection", r.Connection).
		Add("Firmware", r.Version+" "+r.Firmware).
		Add("Images in flash", strconv.Itoa(int(r.Images))).
		Add("Power", r.Power).
		Add("Display", r.Display).
		Add("Input", r.Input)

	p.AddSection("Hardware").
		Add("Init done", ui.Flag(r.Hardware.InitDone, false)).
		Add("DRC error", ui.Flag(r.Hardware.DRCError, true)).
		Add("Forced swap", ui.Flag(r.Hardware.ForcedSwap, true)).
		Add("Sequence abort", ui.Flag(r.Hardware.SequenceAbort, true)).
		Add("Sequence error", ui.Flag(r.Hardware.SequenceError, true)).
		Add("Memory test", ui.Flag(r.System.MemoryTest, false))

	p.AddSection("Main").
		Add("DMD parked", ui.Flag(r.Main.DMDParked, false)).
		Add("Sequence running", ui.Flag(r.Main.SequenceRunning, false)).
		Add("Buffer frozen", ui.Flag(r.Main.BufferFrozen, false)).
		Add("Gamma correction", ui.Flag(r.Main.GammaCorrection, false))

	leds := []string{}
	if r.LEDs.Auto {
		leds = append(leds, "auto")
	}
	for _, l := range []struct {
		name string
		on   bool
	}{{"red", r.LEDs.Red}, {"green", r.LEDs.Green}, {"blue", r.LEDs.Blue}} {
		if l.on {
			leds = append(leds, l.name)
		}
	}
	p.AddSection("Illumination").
		Add("Enabled", strings.Join(leds, ", ")).
		Add("Current R/G/B", fmt.Sprintf("%d / %d / %d", r.Current.Red, r.Current.Green, r.Current.Blue))

	return p
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show controller status",
	Long: `Read the hardware, system and main status registers together with
the firmware version, display mode, input source and LED settings.`,
	Example: `  # Status of the first USB device
  dlpc350-ctl status

  # Through a bridge, as JSON
  dlpc350-ctl status --url ws://lab1.local:8350/packets --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			r, err := readReport(s)
			if err != nil {
				return err
			}
			if outputFormat == "json" {
				return printJSON(r)
			}
			panel := statusPanel(r).Render()
			if ui.IsTerminal() {
				return ui.RenderOnce(panel + "\n")
			}
			fmt.Println(panel)
			return nil
		})
	},
}

var powerCmd = &cobra.Command{
	Use:       "power [normal|standby]",
	Short:     "Get or set the power mode",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"normal", "standby"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			if len(args) == 0 {
				mode, err := s.driver.GetPowerMode()
				if err != nil {
					return err
				}
				fmt.Println(mode)
				return nil
			}
			mode, err := dlpc350.ParsePowerMode(args[0])
			if err != nil {
				return err
			}
			return s.driver.SetPowerMode(mode)
		})
	},
}

var displayCmd = &cobra.Command{
	Use:   "display [video|pattern]",
	Short: "Get or set the display mode",
	Long: `Get or switch the display mode. Leaving pattern mode stops a running
sequence first; the switch is confirmed by reading the mode back.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"video", "pattern"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			if len(args) == 0 {
				mode, err := s.driver.GetDisplayMode()
				if err != nil {
					return err
				}
				fmt.Println(mode)
				return nil
			}
			mode, err := dlpc350.ParseDisplayMode(args[0])
			if err != nil {
				return err
			}
			return s.driver.SetDisplayMode(mode)
		})
	},
}
