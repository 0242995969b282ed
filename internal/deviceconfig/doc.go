// Package deviceconfig applies display settings to a DLPC350 safely.
//
// Settings covers the registers an operator usually adjusts between
// sessions: LED enables and drive currents, the input source, the test
// pattern and the displayed flash image. Fields left nil are not touched.
//
// SafeUpdate snapshots the current settings, writes the requested ones,
// reads them back until they match and, if a write or the read-back
// fails, restores the snapshot.
//
// # Usage Example
//
//	current, err := deviceconfig.Snapshot(drv)
//	if err != nil {
//	    return err
//	}
//	update, err := deviceconfig.NewUpdateBuilder(current).
//	    SetInput(dlpc350.InputTestPattern, 24).
//	    SetTestPattern(dlpc350.TestCheckerboard).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	result := deviceconfig.SafeUpdate(drv, update, nil)
//	if result.Err != nil {
//	    return result.Err
//	}
package deviceconfig
