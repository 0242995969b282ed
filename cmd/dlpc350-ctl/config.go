package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lightcrafter/dlpc350/internal/config"
	"github.com/lightcrafter/dlpc350/internal/ui"
)

var assumeYes bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Overwrite an existing file without asking")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

// resolvedConfigPath returns --config or the default location
func resolvedConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with an example sequence and profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolvedConfigPath()
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil && !assumeYes {
			ok := ui.Confirm(os.Stdin, os.Stdout, "Overwrite configuration", []string{
				path + " already exists",
				"All configured sequences and profiles will be replaced",
			})
			if !ok {
				return errors.New("aborted")
			}
		}

		reg := config.NewRegistry()
		reg.SetSequence("example-bitplanes", config.ExampleSequence())
		reg.SetProfile("focus", config.ExampleProfile())
		if err := saveRegistry(reg); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolvedConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}
