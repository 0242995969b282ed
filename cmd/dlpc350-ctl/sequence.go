package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lightcrafter/dlpc350/internal/config"
	"github.com/lightcrafter/dlpc350/internal/dlpc350"
	"github.com/lightcrafter/dlpc350/internal/pattern"
	"github.com/lightcrafter/dlpc350/internal/ui"
	"github.com/lightcrafter/dlpc350/internal/urls"
)

// Sequence flags
var (
	startAfterUpload bool
	skipExposure     bool
)

func init() {
	rootCmd.AddCommand(sequenceCmd)

	sequenceCmd.AddCommand(sequenceListCmd)
	sequenceCmd.AddCommand(sequenceShowCmd)
	sequenceCmd.AddCommand(sequenceUploadCmd)
	sequenceCmd.AddCommand(sequenceValidateCmd)
	sequenceCmd.AddCommand(sequenceRunCmd("start", "Start the uploaded sequence", (*dlpc350.Driver).StartPatternSequence))
	sequenceCmd.AddCommand(sequenceRunCmd("stop", "Stop the running sequence", (*dlpc350.Driver).StopPatternSequence))
	sequenceCmd.AddCommand(sequenceRunCmd("pause", "Pause the running sequence", (*dlpc350.Driver).PausePatternSequence))
	sequenceCmd.AddCommand(sequencePeriodCmd)

	sequenceUploadCmd.Flags().BoolVar(&startAfterUpload, "start", false, "Start the sequence after a successful upload")
	sequenceUploadCmd.Flags().BoolVar(&skipExposure, "skip-exposure-check", false, "Upload even if the exposure is too short for the bit depths")
}

var sequenceCmd = &cobra.Command{
	Use:   "sequence",
	Short: "Manage pattern sequences",
	Long: `Upload, validate and run the pattern sequences defined in the
configuration file.

A sequence lists patterns as colour, trigger, bit depth, flash image and
start bit. On upload the patterns are packed into the controller's pattern
LUT and the distinct flash images into the image LUT.`,
}

var sequenceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sequences",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		names := reg.SequenceNames()
		if len(names) == 0 {
			fmt.Println("No sequences configured.")
			fmt.Println("Use 'dlpc350-ctl config init' to write an example configuration.")
			return nil
		}
		for _, name := range names {
			spec := reg.GetSequence(name)
			fmt.Printf("%-24s %3d entries  %s\n", name, len(spec.Entries), spec.Description)
		}
		return nil
	},
}

// lookupSequence finds a named sequence
func lookupSequence(reg *config.Registry, name string) (*config.SequenceSpec, error) {
	spec := reg.GetSequence(name)
	if spec == nil {
		return nil, fmt.Errorf("sequence %q not found (have: %s)", name, strings.Join(reg.SequenceNames(), ", "))
	}
	return spec, nil
}

var sequenceShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the packed entries of a sequence",
	Long: `Build a sequence offline and print its LUT entries, image list and
continuation groups. Assumes the internal pattern display mode.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		spec, err := lookupSequence(reg, args[0])
		if err != nil {
			return err
		}
		seq, err := spec.Build(pattern.DisplayModeInternal)
		if err != nil {
			return err
		}

		period := spec.Period.PatternPeriod()
		fmt.Printf("%s: %d entries, %d images, period %s, repeat %v\n",
			args[0], seq.Len(), seq.ImageCount(), period, spec.Repeat)
		for i, e := range seq.Entries() {
			fmt.Printf("  %3d  0x%06X  %s\n", i, e.Pack(), e)
		}
		fmt.Printf("  images: %v\n", seq.Images())

		for _, g := range pattern.Groups(seq.Entries()) {
			if g.Size < 2 {
				continue
			}
			minExposure, _ := pattern.MinimumExposureFor(g.MaxBitDepth)
			fmt.Printf("  group at %d: %d entries, max depth %d, needs %dus per entry\n",
				g.Start, g.Size, g.MaxBitDepth, minExposure)
		}
		if err := pattern.Check(seq, period); err != nil {
			fmt.Printf("  warning: %v\n", err)
		}
		return nil
	},
}

// uploadSteps names the stages of an upload
var uploadSteps = []string{
	"Build sequence",
	"Enter pattern mode",
	"Set period",
	"Check exposure",
	"Configure",
	"Upload pattern LUT",
	"Upload image LUT",
	"Validate",
	"Start",
}

var sequenceUploadCmd = &cobra.Command{
	Use:   "upload <name>",
	Short: "Upload a sequence to the controller",
	Example: `  # Upload and run
  dlpc350-ctl sequence upload example-bitplanes --start

  # Try it against the emulator
  dlpc350-ctl sequence upload example-bitplanes --emulate`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			spec, err := lookupSequence(s.reg, args[0])
			if err != nil {
				return err
			}

			runner := ui.NewRunner(ui.RunnerConfig{
				Title:   "Sequence Upload",
				Command: cmd.CommandPath() + " " + args[0],
				Params: map[string]string{
					"Device":   s.Label(),
					"Sequence": args[0],
					"Period":   spec.Period.PatternPeriod().String(),
				},
				StepNames: uploadSteps,
				Troubleshooting: []string{
					"Check the exposure covers the deepest bit depth in each group",
					"Run 'dlpc350-ctl sequence show " + args[0] + "' to inspect the entries",
					"Run with --trace --log-level debug to see every packet",
					"Pattern LUT and validation bits: " + urls.ProgrammersGuide,
				},
			})
			return runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
				return uploadSequence(s.driver, spec, onStep)
			})
		})
	},
}

// uploadSequence performs the upload stages, reporting each one
func uploadSequence(d *dlpc350.Driver, spec *config.SequenceSpec, onStep ui.StepCallback) (map[string]string, error) {
	step := 0
	run := func(note string, fn func() error) error {
		step++
		onStep(step, "", ui.StepRunning, "")
		if err := fn(); err != nil {
			onStep(step, "", ui.StepFailed, "")
			return err
		}
		onStep(step, "", ui.StepComplete, note)
		return nil
	}

	var seq *pattern.Sequence
	err := run("", func() error {
		mode, err := d.GetPatternDisplayMode()
		if err != nil {
			return err
		}
		seq, err = spec.Build(mode)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := run("", func() error {
		if err := d.SetDisplayMode(dlpc350.DisplayPattern); err != nil {
			return err
		}
		if err := d.StopPatternSequence(); err != nil {
			return err
		}
		if spec.TriggerMode != nil {
			return d.SetPatternTriggerMode(dlpc350.TriggerMode(*spec.TriggerMode))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := run(spec.Period.PatternPeriod().String(), func() error {
		return d.SetPatternPeriod(spec.Period.PatternPeriod())
	}); err != nil {
		return nil, err
	}

	if skipExposure {
		step++
		onStep(step, "", ui.StepSkipped, "skipped")
	} else if err := run("", func() error { return d.CheckPatternSequence(seq) }); err != nil {
		return nil, err
	}

	if err := run(fmt.Sprintf("%d entries, %d images", seq.Len(), seq.ImageCount()), func() error {
		return d.ConfigurePatternSequence(seq, spec.Repeat, spec.Pulses())
	}); err != nil {
		return nil, err
	}

	if err := run(fmt.Sprintf("%d bytes", len(seq.PatternLUT())), func() error {
		return d.SendPatternLUT(seq)
	}); err != nil {
		return nil, err
	}

	if err := run(fmt.Sprintf("%d bytes", len(dlpc350.ImageLUT(seq))), func() error {
		return d.SendImageLUT(seq)
	}); err != nil {
		return nil, err
	}

	if err := run("", func() error {
		v, err := d.ValidatePatternSequence()
		if err != nil {
			return err
		}
		if !v.IsValid() {
			return fmt.Errorf("controller rejected the sequence: %s", strings.Join(v.Faults(), ", "))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if startAfterUpload {
		if err := run("", d.StartPatternSequence); err != nil {
			return nil, err
		}
	} else {
		step++
		onStep(step, "", ui.StepSkipped, "use --start")
	}

	return map[string]string{
		"Entries": strconv.Itoa(seq.Len()),
		"Images":  strconv.Itoa(seq.ImageCount()),
		"Repeat":  strconv.FormatBool(spec.Repeat),
	}, nil
}

var sequenceValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Ask the controller to validate the uploaded sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			v, err := s.driver.ValidatePatternSequence()
			if err != nil {
				return err
			}
			if outputFormat == "json" {
				return printJSON(map[string]any{"valid": v.IsValid(), "faults": v.Faults(), "raw": v.Raw})
			}
			if v.IsValid() {
				ui.PrintSuccess("Sequence valid", map[string]string{"Raw": fmt.Sprintf("0x%02X", v.Raw)})
				return nil
			}
			ui.PrintWarning("Sequence invalid", map[string]string{
				"Faults": strings.Join(v.Faults(), ", "),
				"Raw":    fmt.Sprintf("0x%02X", v.Raw),
			})
			return fmt.Errorf("sequence invalid")
		})
	},
}

// sequenceRunCmd builds the start/stop/pause commands
func sequenceRunCmd(use, short string, fn func(*dlpc350.Driver) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(s *session) error {
				return fn(s.driver)
			})
		},
	}
}

var sequencePeriodCmd = &cobra.Command{
	Use:   "period [exposure-us frame-us]",
	Short: "Get or set the pattern exposure and frame period",
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return fmt.Errorf("give both exposure and frame period")
		}
		return withSession(func(s *session) error {
			if len(args) == 0 {
				p, err := s.driver.GetPatternPeriod()
				if err != nil {
					return err
				}
				fmt.Println(p)
				return nil
			}
			exposure, err := strconv.ParseUint(args[0], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid exposure %q", args[0])
			}
			frame, err := strconv.ParseUint(args[1], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid frame period %q", args[1])
			}
			return s.driver.SetPatternPeriod(pattern.Period{Exposure: uint16(exposure), Frame: uint16(frame)})
		})
	},
}
