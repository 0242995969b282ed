package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/lightcrafter/dlpc350/internal/monitor"
	"github.com/lightcrafter/dlpc350/internal/ui"
)

var monitorInterval time.Duration

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", monitor.DefaultInterval, "Time between status polls")
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live status dashboard",
	Long: `Poll the controller status and show it full screen. The pattern
sequence can be started (s), paused (p) and stopped (x) from the keyboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ui.IsTerminal() {
			return errors.New("monitor needs an interactive terminal; use 'status' instead")
		}
		return withSession(func(s *session) error {
			return monitor.Run(s.driver, monitorInterval)
		})
	},
}
