package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lightcrafter/dlpc350/internal/config"
	"github.com/lightcrafter/dlpc350/internal/deviceconfig"
	"github.com/lightcrafter/dlpc350/internal/ui"
)

var profileDescription string

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileApplyCmd)
	profileCmd.AddCommand(profileSaveCmd)
	profileCmd.AddCommand(profileDeleteCmd)

	profileSaveCmd.Flags().StringVar(&profileDescription, "description", "", "Description stored with the profile")
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Save and restore display settings",
	Long: `A profile is a named set of display settings (LED enables and
currents, input source, test pattern or flash image) kept in the
configuration file. Applying a profile is a verified update: every
setting is read back and the previous settings are restored if any of
them does not stick.`,
}

// lookupProfile finds a named profile
func lookupProfile(reg *config.Registry, name string) (*config.ProfileSpec, error) {
	p := reg.GetProfile(name)
	if p == nil {
		return nil, fmt.Errorf("profile %q not found (have: %s)", name, strings.Join(reg.ProfileNames(), ", "))
	}
	return p, nil
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		names := reg.ProfileNames()
		if len(names) == 0 {
			fmt.Println("No profiles saved.")
			fmt.Println("Use 'dlpc350-ctl profile save <name>' to record the current settings.")
			return nil
		}
		for _, name := range names {
			fmt.Printf("%-24s %s\n", name, reg.GetProfile(name).Description)
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		p, err := lookupProfile(reg, args[0])
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(p)
		}

		panel := ui.NewPanel("Profile " + args[0])
		section := panel.AddSection("Settings")
		if p.Description != "" {
			section.Add("Description", p.Description)
		}
		if p.LEDEnable != "" {
			section.Add("LED enable", p.LEDEnable)
		}
		if p.Red != nil || p.Green != nil || p.Blue != nil {
			section.Add("LED current", fmt.Sprintf("%s/%s/%s", optInt(p.Red), optInt(p.Green), optInt(p.Blue)))
		}
		if p.Input != "" {
			section.Add("Input", p.Input)
		}
		if p.TestPattern != "" {
			section.Add("Test pattern", p.TestPattern)
		}
		if p.FlashImage != nil {
			section.Add("Flash image", fmt.Sprint(*p.FlashImage))
		}
		fmt.Println(panel.Render())
		return nil
	},
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

var profileApplyCmd = &cobra.Command{
	Use:   "apply <name>",
	Short: "Apply a saved profile to the device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			p, err := lookupProfile(s.reg, args[0])
			if err != nil {
				return err
			}
			current, err := currentSettings(s)
			if err != nil {
				return err
			}
			update, err := p.Update(current)
			if err != nil {
				return err
			}
			return applySettings(s, "Profile "+args[0], update)
		})
	},
}

var profileSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Record the current device settings as a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			current, err := currentSettings(s)
			if err != nil {
				return err
			}
			p := config.ProfileFromSettings(current)
			p.Description = profileDescription
			s.reg.SetProfile(args[0], p)
			if err := saveRegistry(s.reg); err != nil {
				return err
			}
			ui.PrintSuccess("Profile saved", map[string]string{
				"Name":     args[0],
				"Settings": strings.Join(deviceconfig.Lines(current), "; "),
			})
			return nil
		})
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		if err := reg.DeleteProfile(args[0]); err != nil {
			return err
		}
		if err := saveRegistry(reg); err != nil {
			return err
		}
		fmt.Printf("Deleted profile %s\n", args[0])
		return nil
	},
}
