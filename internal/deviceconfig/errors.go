package deviceconfig

import (
	"errors"
	"fmt"
	"strings"
)

// Stage names the step of an update that failed
type Stage string

const (
	StageBuild    Stage = "build"
	StageSnapshot Stage = "snapshot"
	StageApply    Stage = "apply"
	StageVerify   Stage = "verify"
	StageRollback Stage = "rollback"
)

// ErrMismatch is wrapped by verification failures
var ErrMismatch = errors.New("settings do not match after write")

// Error describes a failed update
type Error struct {
	Stage      Stage
	Field      string   // setting being written, for apply failures
	Mismatches []string // read-back differences, for verify failures
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Stage))
	if e.Field != "" {
		b.WriteString(" " + e.Field)
	}
	if len(e.Mismatches) > 0 {
		b.WriteString(": " + strings.Join(e.Mismatches, "; "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// IsMismatch reports whether err is a read-back mismatch
func IsMismatch(err error) bool {
	return errors.Is(err, ErrMismatch)
}
