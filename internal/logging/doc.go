// Package logging provides structured logging for the DLPC350 driver.
//
// This package wraps a zap logger with convenience functions used throughout
// the driver and its command-line tools.
//
// # Log Levels
//
//   - Debug: frame and packet hex dumps, polling attempts
//   - Info: connections, mode changes, sequence uploads
//   - Warn: non-fatal issues (reader shutdown, dropped bridge clients)
//   - Error: failures that abort an operation
//
// # Configuration
//
// Logging is silent unless a level is given or DLPC350_LOG_LEVEL is set:
//
//	// "" falls back to DLPC350_LOG_LEVEL
//	if err := logging.Initialize(level); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Output goes to stderr in console format so command output on stdout stays
// machine readable.
//
// # Protocol Logging
//
//	logging.LogFrame("send", frame.String(), frame.Marshal())
//	logging.LogRawBytes("rejected packet", packet)
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. SetLogger is meant for
// tests and must not race with logging calls.
package logging
