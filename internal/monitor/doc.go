// Package monitor implements a live terminal dashboard for a DLPC350.
//
// The dashboard polls the controller's status registers on a fixed
// interval and lets the operator start, pause and stop the pattern
// sequence from the keyboard. It is a bubbletea model; Run starts it on
// the alternate screen.
//
// # Keys
//
//	s   start the pattern sequence
//	p   pause the pattern sequence
//	x   stop the pattern sequence
//	r   refresh now
//	?   toggle full help
//	q   quit
//
// # Usage Example
//
//	drv := dlpc350.New(t)
//	if err := monitor.Run(drv, time.Second); err != nil {
//	    return err
//	}
package monitor
