package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lightcrafter/dlpc350/internal/deviceconfig"
	"github.com/lightcrafter/dlpc350/internal/dlpc350"
	"github.com/lightcrafter/dlpc350/internal/ui"
)

// applySettings runs a verified update and reports it
func applySettings(s *session, title string, update *deviceconfig.Settings) error {
	result := deviceconfig.SafeUpdate(s.driver, update, verifyOptions(s))
	if result.Err != nil {
		hints := []string{"Nothing was changed"}
		if !result.RolledBack && result.Before != nil {
			hints = []string{"Previous settings could not be restored; run 'dlpc350-ctl status' to check the device"}
		}
		ui.PrintFailure(title+" failed", result.Err, hints)
		return result.Err
	}

	details := map[string]string{}
	for i, change := range deviceconfig.Diff(result.Before, update) {
		details[fmt.Sprintf("Change %d", i+1)] = change
	}
	if len(details) == 0 {
		details["Changes"] = "none (already set)"
	}
	ui.PrintSuccess(title, details)
	return nil
}

// verifyOptions derives the read-back schedule from the configured timing
func verifyOptions(s *session) *deviceconfig.VerifyOptions {
	opts := deviceconfig.DefaultVerifyOptions()
	if t := s.reg.Timing; t != nil {
		if t.PollAttempts > 0 {
			opts.Attempts = t.PollAttempts
		}
		opts.Delay = t.PollInterval
	}
	return opts
}

// currentSettings snapshots the device as the builder baseline
func currentSettings(s *session) (*deviceconfig.Settings, error) {
	return deviceconfig.Snapshot(s.driver)
}

// LED flags
var (
	ledRed, ledGreen, ledBlue int
	ledEnable                 string
)

var ledCmd = &cobra.Command{
	Use:   "led",
	Short: "Get or set LED enables and currents",
	Long: `Without flags, print the LED enable state and drive currents.

Currents are 0-255 where 255 is the brightest. --enable takes a comma
separated list of red, green, blue and auto. Changes are read back and
reverted if they do not stick.`,
	Example: `  # Full green, half red, blue off
  dlpc350-ctl led --red 128 --green 255 --blue 0

  # Let the sequencer drive the LEDs
  dlpc350-ctl led --enable auto`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			current, err := currentSettings(s)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("enable") && !flags.Changed("red") && !flags.Changed("green") && !flags.Changed("blue") {
				if outputFormat == "json" {
					return printJSON(map[string]any{"enable": current.LEDEnable, "current": current.LEDCurrent})
				}
				fmt.Printf("enable:  %s\n", deviceconfig.FormatLEDEnable(*current.LEDEnable))
				fmt.Printf("current: red=%d green=%d blue=%d\n",
					current.LEDCurrent.Red, current.LEDCurrent.Green, current.LEDCurrent.Blue)
				return nil
			}

			b := deviceconfig.NewUpdateBuilder(current)
			if flags.Changed("enable") {
				e, err := deviceconfig.ParseLEDEnable(ledEnable)
				if err != nil {
					return err
				}
				b.SetLEDEnable(e)
			}
			if flags.Changed("red") {
				b.SetRed(ledRed)
			}
			if flags.Changed("green") {
				b.SetGreen(ledGreen)
			}
			if flags.Changed("blue") {
				b.SetBlue(ledBlue)
			}
			update, err := b.Build()
			if err != nil {
				return err
			}
			return applySettings(s, "LED settings", update)
		})
	},
}

var inputBits int

var inputCmd = &cobra.Command{
	Use:   "input [parallel|test_pattern|flash|fpdlink]",
	Short: "Get or set the video input source",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			if len(args) == 0 {
				src, err := s.driver.GetInputSource()
				if err != nil {
					return err
				}
				fmt.Println(deviceconfig.FormatInput(src))
				return nil
			}
			it, err := dlpc350.ParseInputType(args[0])
			if err != nil {
				return err
			}
			current, err := currentSettings(s)
			if err != nil {
				return err
			}
			update, err := deviceconfig.NewUpdateBuilder(current).SetInput(it, inputBits).Build()
			if err != nil {
				return err
			}
			return applySettings(s, "Input source", update)
		})
	},
}

var testPatternCmd = &cobra.Command{
	Use:   "test-pattern [name]",
	Short: "Get or select the internal test pattern",
	Long: `Get or select the internal test pattern. The input source must be
set to test_pattern first (dlpc350-ctl input test_pattern), or pass
--select-input to switch it in the same verified update.

Patterns: solid_field, horizontal_ramp, vertical_ramp, horizontal_lines,
diagonal_lines, vertical_lines, grid, checkerboard, rgb_ramp, color_bars,
step_bars.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			if len(args) == 0 {
				p, err := s.driver.GetTestPattern()
				if err != nil {
					return err
				}
				fmt.Println(p)
				return nil
			}
			p, err := dlpc350.ParseTestPattern(args[0])
			if err != nil {
				return err
			}
			current, err := currentSettings(s)
			if err != nil {
				return err
			}
			b := deviceconfig.NewUpdateBuilder(current)
			if selectInput {
				b.SetInput(dlpc350.InputTestPattern, current.Input.BitDepth.Bits())
			}
			update, err := b.SetTestPattern(p).Build()
			if err != nil {
				return err
			}
			return applySettings(s, "Test pattern", update)
		})
	},
}

var selectInput bool

var flashImageCmd = &cobra.Command{
	Use:   "flash-image [index]",
	Short: "Get or select the displayed flash image",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			if len(args) == 0 {
				idx, err := s.driver.GetFlashImage()
				if err != nil {
					return err
				}
				n, err := s.driver.GetNumImagesInFlash()
				if err != nil {
					return err
				}
				fmt.Printf("%d of %d\n", idx, n)
				return nil
			}
			idx, err := strconv.ParseUint(args[0], 10, 8)
			if err != nil {
				return fmt.Errorf("invalid image index %q", args[0])
			}
			current, err := currentSettings(s)
			if err != nil {
				return err
			}
			b := deviceconfig.NewUpdateBuilder(current)
			if selectInput {
				b.SetInput(dlpc350.InputFlash, current.Input.BitDepth.Bits())
			}
			update, err := b.SetFlashImage(uint8(idx)).Build()
			if err != nil {
				return err
			}
			return applySettings(s, "Flash image", update)
		})
	},
}

func init() {
	ledCmd.Flags().IntVar(&ledRed, "red", 0, "Red LED current (0-255)")
	ledCmd.Flags().IntVar(&ledGreen, "green", 0, "Green LED current (0-255)")
	ledCmd.Flags().IntVar(&ledBlue, "blue", 0, "Blue LED current (0-255)")
	ledCmd.Flags().StringVar(&ledEnable, "enable", "", "Enabled LEDs (red,green,blue,auto or none)")

	inputCmd.Flags().IntVar(&inputBits, "bits", 24, "Parallel port bits per pixel")

	testPatternCmd.Flags().BoolVar(&selectInput, "select-input", false, "Switch the input source to test_pattern as well")
	flashImageCmd.Flags().BoolVar(&selectInput, "select-input", false, "Switch the input source to flash as well")
}
